package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fstgc/vms-portal/config"
)

// InitLogger initializes the structured logger at info level.
func InitLogger() *slog.Logger {
	return NewLogger(os.Stdout, slog.LevelInfo)
}

// NewLogger builds a JSON logger writing to w and installs it as the default.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	return ParseConfig()
}

// ParseConfig parses, sanitizes and validates the process environment.
func ParseConfig() (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ResolveKeys derives the cookie and CSRF keys from APP_SECRET, warning when a
// throwaway development secret is in use.
func ResolveKeys(cfg *config.AppConfig, logger *slog.Logger) (config.Keys, error) {
	if cfg.Secret == "" && logger != nil {
		logger.Warn("APP_SECRET not set; using a random secret, sessions' flash and CSRF cookies will not survive a restart")
	}
	keys, err := cfg.DeriveKeys()
	if err != nil {
		return config.Keys{}, fmt.Errorf("derive keys: %w", err)
	}
	return keys, nil
}
