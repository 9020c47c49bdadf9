package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JCrossman/dats-booking-sub000/config"
)

func setJWTSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{JWTSecret: secret}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestGenerateAndExtractToken(t *testing.T) {
	setJWTSecret(t, "test-secret")

	token, err := GenerateToken("12345", time.Hour)
	require.NoError(t, err)

	owner, err := ExtractOwnerFromToken(token)
	require.NoError(t, err)
	require.Equal(t, "12345", owner)
}

func TestExtractExpiredToken(t *testing.T) {
	setJWTSecret(t, "test-secret")

	token, err := GenerateToken("12345", -time.Minute)
	require.NoError(t, err)

	_, err = ExtractOwnerFromToken(token)
	require.Error(t, err)
}

func TestExtractTokenWrongSecret(t *testing.T) {
	setJWTSecret(t, "test-secret")
	token, err := GenerateToken("12345", time.Hour)
	require.NoError(t, err)

	setJWTSecret(t, "other-secret")
	_, err = ExtractOwnerFromToken(token)
	require.Error(t, err)
}

func TestExtractGarbageToken(t *testing.T) {
	setJWTSecret(t, "test-secret")
	_, err := ExtractOwnerFromToken("not.a.token")
	require.Error(t, err)
}
