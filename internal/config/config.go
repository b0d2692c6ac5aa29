package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config is the runtime configuration, read once at startup. DATABASE_URL
// and REDIS_ADDR are optional: without them the server runs with in-memory
// drafts only, which is what local development and the test suite want.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	RedisAddr   string

	TournamentTurnTimeout time.Duration
	CasualTurnTimeout     time.Duration

	LogLevel zapcore.Level
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:              getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		TournamentTurnTimeout: 120 * time.Second,
		CasualTurnTimeout:     30 * time.Second,
		LogLevel:              zapcore.InfoLevel,
	}

	var err error
	if cfg.TournamentTurnTimeout, err = getduration("TOURNAMENT_TURN_TIMEOUT", cfg.TournamentTurnTimeout); err != nil {
		return Config{}, err
	}
	if cfg.CasualTurnTimeout, err = getduration("CASUAL_TURN_TIMEOUT", cfg.CasualTurnTimeout); err != nil {
		return Config{}, err
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if cfg.LogLevel, err = zapcore.ParseLevel(raw); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	if cfg.TournamentTurnTimeout <= 0 || cfg.CasualTurnTimeout <= 0 {
		return Config{}, fmt.Errorf("turn timeouts must be positive")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
