package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 120*time.Second, cfg.TournamentTurnTimeout)
	require.Equal(t, 30*time.Second, cfg.CasualTurnTimeout)
	require.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("TOURNAMENT_TURN_TIMEOUT", "90s")
	t.Setenv("CASUAL_TURN_TIMEOUT", "15s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.HTTPAddr)
	require.Equal(t, 90*time.Second, cfg.TournamentTurnTimeout)
	require.Equal(t, 15*time.Second, cfg.CasualTurnTimeout)
	require.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
}

func TestLoad_BadValues(t *testing.T) {
	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("CASUAL_TURN_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		t.Setenv("CASUAL_TURN_TIMEOUT", "0s")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load()
		require.Error(t, err)
	})
}
