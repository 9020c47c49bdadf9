package models

import "time"

// Session holds the authenticated state for one rider against the remote
// scheduling service. Token is the serialized cookie set accumulated during
// login; it is opaque to everything except the protocol client. A Session is
// never persisted in plaintext, the store seals it into an Envelope first.
type Session struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has passed its expiry instant.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
