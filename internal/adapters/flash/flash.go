// Package flash stores one-shot notices (e.g. "Logged out successfully") in a
// signed and encrypted cookie so they survive the redirect that follows.
package flash

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/fstgc/vms-portal/internal/ports"
)

// CookieName is the name of the flash cookie.
const CookieName = "vms_flash"

// maxAge bounds how long an unread flash survives.
const maxAge = 300

// Store is a gorilla/sessions backed ports.FlashStore.
type Store struct {
	cookies *sessions.CookieStore
	secure  func(r *http.Request) bool
}

// Options configures Store.
type Options struct {
	HashKey  []byte
	BlockKey []byte
	Domain   string
	// Secure decides the cookie's Secure attribute per request. Nil means never.
	Secure func(r *http.Request) bool
}

// New creates a flash Store.
func New(opts Options) *Store {
	cs := sessions.NewCookieStore(opts.HashKey, opts.BlockKey)
	cs.Options = &sessions.Options{
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	secure := opts.Secure
	if secure == nil {
		secure = func(*http.Request) bool { return false }
	}
	return &Store{cookies: cs, secure: secure}
}

var _ ports.FlashStore = (*Store)(nil)

// AddFlash queues message for the next page that reads flashes.
func (s *Store) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	sess := s.session(r)
	sess.AddFlash(message)
	return sess.Save(r, w)
}

// Flashes returns and clears pending messages. A tampered or stale cookie
// yields no messages and is overwritten.
func (s *Store) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	sess := s.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 && sess.IsNew {
		return nil, nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok && msg != "" {
			out = append(out, msg)
		}
	}
	if err := sess.Save(r, w); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Store) session(r *http.Request) *sessions.Session {
	// Get returns a fresh session alongside a decode error; that is what we want
	// for an unreadable cookie.
	sess, _ := s.cookies.Get(r, CookieName)
	opts := *s.cookies.Options
	opts.Secure = s.secure(r)
	sess.Options = &opts
	return sess
}
