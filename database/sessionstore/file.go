package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/crypto"
)

const (
	storeDirMode  = 0o700
	storeFileMode = 0o600
)

// fileRecord is the on-disk shape: the owner in the clear for lookup, the
// session itself only inside the sealed envelope.
type fileRecord struct {
	OwnerID  string           `json:"ownerId"`
	Envelope *crypto.Envelope `json:"envelope"`
}

// FileStore keeps a single encrypted session file per installation.
type FileStore struct {
	path string
	key  []byte
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store writing to path with the given encryption key.
func NewFileStore(path string, key []byte) *FileStore {
	return &FileStore{path: filepath.Clean(path), key: key}
}

func (s *FileStore) Save(ctx context.Context, ownerID string, sess models.Session) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	plaintext, err := json.Marshal(sess)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	env, err := crypto.Encrypt(plaintext, s.key)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	data, err := json.Marshal(fileRecord{OwnerID: ownerID, Envelope: env})
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), storeDirMode); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if err := os.WriteFile(s.path, data, storeFileMode); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, ownerID string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load", Err: err}
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	if rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	plaintext, err := crypto.Decrypt(rec.Envelope, s.key)
	if err != nil {
		// A tampered or wrongly-keyed file is corruption, not a missing
		// session.
		return nil, &StorageError{Op: "load", Err: err}
	}

	var sess models.Session
	if err := json.Unmarshal(plaintext, &sess); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return &sess, nil
}

func (s *FileStore) Delete(ctx context.Context, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}
