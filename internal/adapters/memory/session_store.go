// Package memory provides process-local adapters for single-instance and
// development deployments.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/ports"
)

// SessionStore keeps sessions in a map. Expired entries are dropped lazily on
// Get and in bulk by Sweep.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
	now      func() time.Time
	onExpire func(id string)
}

// NewSessionStore creates an empty store. A nil now defaults to time.Now.
func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]domainauth.Session),
		now:      now,
	}
}

var _ ports.SessionStore = (*SessionStore)(nil)

// OnExpire registers fn to run with the ID of every session the store drops
// for being expired. It is called without the store's lock held.
func (s *SessionStore) OnExpire(fn func(id string)) {
	s.mu.Lock()
	s.onExpire = fn
	s.mu.Unlock()
}

func (s *SessionStore) expired(ids ...string) {
	s.mu.RLock()
	fn := s.onExpire
	s.mu.RUnlock()
	if fn == nil {
		return
	}
	for _, id := range ids {
		fn(id)
	}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Expired(s.now()) {
		return errors.New("session is expired")
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		s.expired(id)
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Touch(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Expired(s.now()) {
		return ports.ErrSessionNotFound
	}
	sess.ExpiresAt = expiresAt
	s.sessions[id] = sess
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	now := s.now()
	var dropped []string
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			dropped = append(dropped, id)
		}
	}
	s.mu.Unlock()
	s.expired(dropped...)
	return len(dropped)
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
