// Package ports defines interfaces (hexagonal ports) for the portal.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"errors"
	"net/http"
	"time"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
)

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
	// Touch moves an existing session's expiry to expiresAt. It returns
	// ErrSessionNotFound when the session is gone and never recreates one.
	Touch(ctx context.Context, id string, expiresAt time.Time) error
}

// GenerationStore hands out monotonically increasing request generations per
// (scope, container) pair so a slow, superseded response can detect that a
// newer request for the same container has started.
type GenerationStore interface {
	// Next starts a new generation and returns it.
	Next(ctx context.Context, scope, container string) (int64, error)
	// Current returns the latest generation handed out (0 when none).
	Current(ctx context.Context, scope, container string) (int64, error)
	// Forget drops every counter in scope (at logout and when a session expires).
	Forget(ctx context.Context, scope string) error
}

// FlashStore carries one-shot messages across a redirect.
type FlashStore interface {
	AddFlash(w http.ResponseWriter, r *http.Request, message string) error
	Flashes(w http.ResponseWriter, r *http.Request) ([]string, error)
}

// ErrSessionNotFound is returned by SessionStore.Get for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")
