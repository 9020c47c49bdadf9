package sessionstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/JCrossman/dats-booking-sub000/models"
)

// ErrNotFound reports that no session exists for an owner. It is a normal,
// expected outcome and must never be produced by a backend failure.
var ErrNotFound = errors.New("session not found")

// StorageError wraps any backend failure: connectivity, permission, quota, or
// a corrupted record. Callers must treat it as an infrastructure outage, not
// as "please log in again".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store persists encrypted session envelopes, one per owner. Implementations
// are safe for concurrent use across owners; for a single owner last-write-wins,
// since one rider holds at most one active session.
type Store interface {
	Save(ctx context.Context, ownerID string, sess models.Session) error
	// Load returns ErrNotFound when no record exists for the owner, and a
	// StorageError for any other failure.
	Load(ctx context.Context, ownerID string) (*models.Session, error)
	Delete(ctx context.Context, ownerID string) error
}
