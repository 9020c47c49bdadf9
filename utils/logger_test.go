package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/JCrossman/dats-booking-sub000/config"
)

func initLoggerWith(t *testing.T, cfg config.Config) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = cfg
	Logger = nil
	t.Cleanup(func() {
		config.AppConfig = prev
		Logger = nil
	})
	InitializeLogger()
}

func TestInitializeLoggerHonorsConfiguredLevel(t *testing.T) {
	initLoggerWith(t, config.Config{Env: "development", LogLevel: "warn"})

	require.False(t, Logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, Logger.Core().Enabled(zapcore.WarnLevel))
}

func TestInitializeLoggerDefaultsByEnvironment(t *testing.T) {
	t.Run("development debugs", func(t *testing.T) {
		initLoggerWith(t, config.Config{Env: "development"})
		require.True(t, Logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("production starts at info", func(t *testing.T) {
		initLoggerWith(t, config.Config{Env: "production"})
		require.False(t, Logger.Core().Enabled(zapcore.DebugLevel))
		require.True(t, Logger.Core().Enabled(zapcore.InfoLevel))
	})
}

func TestInitializeLoggerIgnoresBadLevel(t *testing.T) {
	initLoggerWith(t, config.Config{Env: "development", LogLevel: "shouting"})
	require.True(t, Logger.Core().Enabled(zapcore.DebugLevel))
}
