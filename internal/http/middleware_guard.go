package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/observability/metrics"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
	"github.com/fstgc/vms-portal/internal/ports"
	"github.com/fstgc/vms-portal/internal/service"
)

// Guard redirect reasons, used as the metric tag.
const (
	reasonNoSession    = "no_session"
	reasonNotFound     = "not_found"
	reasonExpired      = "expired"
	reasonInvalid      = "invalid"
	reasonStoreError   = "store_error"
	reasonRoleMismatch = "role_mismatch"
)

// SessionReader resolves the session behind a session_id cookie.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

var _ SessionReader = (*service.AuthService)(nil)

// GuardConfig groups the session guard's dependencies.
type GuardConfig struct {
	Sessions SessionReader // Required
	Cookies  CookieConfig
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// RequirePortal returns a middleware that admits only signed-in users whose
// role belongs on portal. It decides before the wrapped handler writes
// anything, so no protected markup or backend call precedes a redirect.
//
//   - no cookie, unknown or expired session, store failure: redirect to /login
//   - malformed session (already deleted by the service): cookie cleared, /login
//   - role of the other portal: redirect to that portal's dashboard
//   - admitted: the session_id cookie is re-issued with the slid expiry
func RequirePortal(cfg GuardConfig, portal domainauth.Portal) func(http.Handler) http.Handler {
	if cfg.Sessions == nil {
		panic("RequirePortal requires a SessionReader") //nolint:forbidigo // Fail fast during server setup.
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Metrics
	if sink == nil {
		sink = statsd.Discard
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Protected pages must never be served from the browser cache after logout.
			w.Header().Set("Cache-Control", "no-store")

			bounce := func(target, reason string) {
				metrics.EmitGuardRedirect(sink, string(portal), reason)
				redirect(w, r, target)
			}

			id := sessionIDFromRequest(r)
			if id == "" {
				bounce(loginPath, reasonNoSession)
				return
			}

			sess, err := cfg.Sessions.GetSession(r.Context(), id)
			if err != nil {
				reason := guardReason(err)
				if reason == reasonStoreError {
					logger.WarnContext(r.Context(), "session lookup failed", "portal", string(portal), "error", err)
				} else {
					clearSessionCookie(w, r, cfg.Cookies)
				}
				bounce(loginPath, reason)
				return
			}

			if home := sess.User.Portal(); home != portal {
				bounce(home.DashboardPath(), reasonRoleMismatch)
				return
			}

			// The service slid the idle expiry; the cookie follows it.
			setSessionCookie(w, r, cfg.Cookies, sess.ID, sess.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
		})
	}
}

// guardReason classifies a GetSession failure.
func guardReason(err error) string {
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		return reasonNotFound
	case errors.Is(err, service.ErrSessionExpired):
		return reasonExpired
	case errors.Is(err, service.ErrSessionInvalid):
		return reasonInvalid
	default:
		return reasonStoreError
	}
}
