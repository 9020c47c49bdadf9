package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	large := make([]byte, 10*1024)
	_, err := rand.Read(large)
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "empty input", plaintext: []byte{}},
		{name: "short ascii", plaintext: []byte("session token")},
		{name: "unicode", plaintext: []byte("réservation déplacement — 预订")},
		{name: "binary 10KB", plaintext: large},
	}

	key := testKey(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Encrypt(tt.plaintext, key)
			require.NoError(t, err)
			require.Len(t, env.IV, IVSize)
			require.Len(t, env.Tag, TagSize)

			got, err := Decrypt(env, key)
			require.NoError(t, err)
			require.True(t, bytes.Equal(tt.plaintext, got))
		})
	}
}

func TestFreshIVPerCall(t *testing.T) {
	key := testKey(t)
	a, err := Encrypt([]byte("same plaintext"), key)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same plaintext"), key)
	require.NoError(t, err)
	require.NotEqual(t, a.IV, b.IV)
	require.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestTamperDetection(t *testing.T) {
	key := testKey(t)
	env, err := Encrypt([]byte("the session cookie payload"), key)
	require.NoError(t, err)

	t.Run("ciphertext", func(t *testing.T) {
		ct := bytes.Clone(env.Ciphertext)
		ct[0] ^= 0x01
		_, err := Decrypt(&Envelope{Ciphertext: ct, IV: env.IV, Tag: env.Tag}, key)
		require.Error(t, err)
	})
	t.Run("iv", func(t *testing.T) {
		iv := bytes.Clone(env.IV)
		iv[3] ^= 0xFF
		_, err := Decrypt(&Envelope{Ciphertext: env.Ciphertext, IV: iv, Tag: env.Tag}, key)
		require.Error(t, err)
	})
	t.Run("tag", func(t *testing.T) {
		tag := bytes.Clone(env.Tag)
		tag[TagSize-1] ^= 0x10
		_, err := Decrypt(&Envelope{Ciphertext: env.Ciphertext, IV: env.IV, Tag: tag}, key)
		require.Error(t, err)
	})
	t.Run("wrong key", func(t *testing.T) {
		_, err := Decrypt(env, testKey(t))
		require.Error(t, err)
	})
	t.Run("truncated iv", func(t *testing.T) {
		_, err := Decrypt(&Envelope{Ciphertext: env.Ciphertext, IV: env.IV[:IVSize-1], Tag: env.Tag}, key)
		require.Error(t, err)
	})
}

func TestDeriveKeyDeterministic(t *testing.T) {
	secret := []byte("operator secret")
	salt := []byte("installation salt")

	a := DeriveKey(secret, salt)
	b := DeriveKey(secret, salt)
	require.Equal(t, a, b)
	require.Len(t, a, KeySize)

	require.NotEqual(t, a, DeriveKey([]byte("other secret"), salt))
	require.NotEqual(t, a, DeriveKey(secret, []byte("other salt")))
}

func TestGenerateKeyLengthAndUniqueness(t *testing.T) {
	a := testKey(t)
	b := testKey(t)
	require.Len(t, a, KeySize)
	require.NotEqual(t, a, b)
}
