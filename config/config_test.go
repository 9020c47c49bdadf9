package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()

	require.Equal(t, "8080", AppConfig.AppPort)
	require.Equal(t, "America/Edmonton", AppConfig.Timezone)
	require.Equal(t, 3, AppConfig.MaxAdvanceDays)
	require.Equal(t, 2, AppConfig.NoticeHours)
	require.Equal(t, 12, AppConfig.CutoffHour)
	require.Equal(t, "file", AppConfig.SessionStore)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "https://dats.test")
	t.Setenv("SESSION_STORE", "mongo")
	t.Setenv("MAX_ADVANCE_DAYS", "5")

	LoadConfig()

	require.Equal(t, "https://dats.test", AppConfig.RemoteBaseURL)
	require.Equal(t, "mongo", AppConfig.SessionStore)
	require.Equal(t, 5, AppConfig.MaxAdvanceDays)
}

func TestLoadConfigReadsSecretsFromEnvironment(t *testing.T) {
	// The secrets have no non-empty default, so they must still reach the
	// struct from the environment alone.
	t.Setenv("SESSION_SECRET", "operator-secret")
	t.Setenv("JWT_SECRET", "shell-secret")

	LoadConfig()

	require.Equal(t, "operator-secret", AppConfig.SessionSecret)
	require.Equal(t, "shell-secret", AppConfig.JWTSecret)
}

func TestLoadConfigSecretsDefaultEmpty(t *testing.T) {
	LoadConfig()

	require.Empty(t, AppConfig.SessionSecret)
	require.Empty(t, AppConfig.JWTSecret)
}
