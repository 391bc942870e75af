package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreKind selects where server-side sessions live.
type SessionStoreKind string

const (
	// SessionStoreRedis persists sessions in Redis (production).
	SessionStoreRedis SessionStoreKind = "redis"
	// SessionStoreMemory keeps sessions in process memory (development only).
	SessionStoreMemory SessionStoreKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreKind: %q (valid options: redis, memory)", v)
	}
}

// SessionConfig controls session lifetime and storage.
type SessionConfig struct {
	Store SessionStoreKind `env:"STORE" envDefault:"redis"`

	// TTL is the session lifetime for a normal sign-in.
	TTL time.Duration `env:"TTL" envDefault:"30m"`

	// RememberTTL is the session lifetime when "remember me" is checked.
	RememberTTL time.Duration `env:"REMEMBER_TTL" envDefault:"168h"`

	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"vms:session:"`
}

// Sanitize applies guardrails to session lifetimes.
func (s *SessionConfig) Sanitize() {
	if s.Store == "" {
		s.Store = SessionStoreRedis
	}
	if s.TTL < time.Minute {
		s.TTL = 30 * time.Minute
	}
	if s.RememberTTL < s.TTL {
		s.RememberTTL = s.TTL
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
	if s.KeyPrefix == "" {
		s.KeyPrefix = "vms:session:"
	}
}

// Lifetime returns the session lifetime for the remember-me choice.
func (s *SessionConfig) Lifetime(rememberMe bool) time.Duration {
	if rememberMe {
		return s.RememberTTL
	}
	return s.TTL
}
