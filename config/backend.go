package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// BackendConfig configures the client for the volunteer REST backend.
type BackendConfig struct {
	// BaseURL is the root of the REST API; endpoint paths such as "api/login" are resolved against it.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8081/"`

	// Timeout bounds every backend request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sanitize normalises the base URL and clamps the timeout.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimSpace(b.BaseURL)
	if b.BaseURL != "" && !strings.HasSuffix(b.BaseURL, "/") {
		b.BaseURL += "/"
	}
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
	if b.Timeout > 2*time.Minute {
		b.Timeout = 2 * time.Minute
	}
}

// Validate ensures BaseURL is an absolute http(s) URL.
func (b *BackendConfig) Validate() error {
	if b.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL is required")
	}
	u, err := url.Parse(b.BaseURL)
	if err != nil {
		return fmt.Errorf("BACKEND_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BACKEND_BASE_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("BACKEND_BASE_URL must include a host")
	}
	return nil
}
