// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.SessionStore = (*FailingSessionStore)(nil)
)

// MemorySessionStore is an in-memory session store for unit tests. It does not
// enforce expiry so tests can plant expired or malformed sessions.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	deleted  []string
	touched  int
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *MemorySessionStore) Touch(_ context.Context, id string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return ports.ErrSessionNotFound
	}
	sess.ExpiresAt = expiresAt
	m.sessions[id] = sess
	m.touched++
	return nil
}

// Touches returns how many times Touch succeeded.
func (m *MemorySessionStore) Touches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touched
}

// Put stores sess verbatim, bypassing validation.
func (m *MemorySessionStore) Put(sess domainauth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
}

// Has reports whether id is stored.
func (m *MemorySessionStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Deleted returns the ids passed to Delete, in order.
func (m *MemorySessionStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// FailingSessionStore wraps a store and injects errors per operation.
type FailingSessionStore struct {
	ports.SessionStore
	SaveErr   error
	GetErr    error
	DeleteErr error
	TouchErr  error
}

func (f *FailingSessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	return f.SessionStore.Save(ctx, sess)
}

func (f *FailingSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if f.GetErr != nil {
		return domainauth.Session{}, f.GetErr
	}
	return f.SessionStore.Get(ctx, id)
}

func (f *FailingSessionStore) Delete(ctx context.Context, id string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	return f.SessionStore.Delete(ctx, id)
}

func (f *FailingSessionStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	if f.TouchErr != nil {
		return f.TouchErr
	}
	return f.SessionStore.Touch(ctx, id, expiresAt)
}
