package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length.
	KeySize = 32
	// IVSize is the per-call random initialization vector length. Never reused.
	IVSize = 16
	// TagSize is the GCM authentication tag length.
	TagSize = 16

	keyIterations = 100_000
)

// Envelope is an authenticated ciphertext. All fields serialize as base64 so
// the envelope is safe for any storage backend. Immutable once created; a
// fresh envelope replaces the old one on every session refresh.
type Envelope struct {
	Ciphertext []byte `json:"ciphertext" bson:"ciphertext"`
	IV         []byte `json:"iv" bson:"iv"`
	Tag        []byte `json:"tag" bson:"tag"`
}

// DeriveKey deterministically derives a fixed-length key from an operator
// secret and salt. Same secret and salt always yield the same key.
func DeriveKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, keyIterations, KeySize, sha256.New)
}

// GenerateKey produces a cryptographically random key for first-run bootstrap
// when no operator-supplied secret exists.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under AES-256-GCM with a fresh random IV.
func Encrypt(plaintext, key []byte) (*Envelope, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	n := len(sealed) - TagSize
	return &Envelope{
		Ciphertext: sealed[:n],
		IV:         iv,
		Tag:        sealed[n:],
	}, nil
}

// Decrypt opens an envelope. Any tamper to ciphertext, IV, or tag fails
// authentication and returns an error; corrupted plaintext is never returned.
func Decrypt(env *Envelope, key []byte) ([]byte, error) {
	if env == nil {
		return nil, fmt.Errorf("decrypt: nil envelope")
	}
	if len(env.IV) != IVSize || len(env.Tag) != TagSize {
		return nil, fmt.Errorf("decrypt: malformed envelope")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+TagSize)
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	plaintext, err := gcm.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: authentication failed: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
