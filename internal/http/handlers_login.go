package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	apperrors "github.com/fstgc/vms-portal/internal/errors"
	"github.com/fstgc/vms-portal/internal/http/ui/viewmodel"
	"github.com/fstgc/vms-portal/internal/observability/metrics"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
	"github.com/fstgc/vms-portal/internal/ports"
	"github.com/fstgc/vms-portal/internal/service"
)

// MsgLoggedOut is flashed on the login page after a logout.
const MsgLoggedOut = "Logged out successfully"

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, in service.LoginInput) (*domainauth.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

var _ AuthServiceInterface = (*service.AuthService)(nil)

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc         AuthServiceInterface
	T           *TemplateRenderer
	Flash       ports.FlashStore
	Generations *service.GenerationService
	Cookies     CookieConfig
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// loginPage is the data behind the login templates.
type loginPage struct {
	viewmodel.Layout
	Username   string
	RememberMe bool
	Error      string
}

func (p *loginPage) LayoutData() *viewmodel.Layout { return &p.Layout }

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) sink() statsd.Sink {
	if h.Metrics == nil {
		return statsd.Discard
	}
	return h.Metrics
}

// LoginPage renders the login form, or sends a visitor who is already
// signed in straight to their dashboard.
// GET /login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := h.currentSession(w, r); sess != nil {
		redirect(w, r, sess.User.Portal().DashboardPath())
		return
	}

	page := h.newLoginPage(r)
	if h.Flash != nil {
		flashes, err := h.Flash.Flashes(w, r)
		if err != nil {
			h.logger().WarnContext(r.Context(), "reading flash messages failed", "error", err)
		}
		page.Flashes = flashes
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := h.T.RenderFragment(w, "login-page", page); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// currentSession returns the visitor's valid session, or nil. A cookie that
// no longer resolves is cleared; a store failure leaves it alone.
func (h *AuthHandlers) currentSession(w http.ResponseWriter, r *http.Request) *domainauth.Session {
	id := sessionIDFromRequest(r)
	if id == "" {
		return nil
	}
	sess, err := h.Svc.GetSession(r.Context(), id)
	if err != nil {
		if guardReason(err) == reasonStoreError {
			h.logger().WarnContext(r.Context(), "session lookup failed", "error", err)
		} else {
			clearSessionCookie(w, r, h.Cookies)
		}
		return nil
	}
	return sess
}

// Login authenticates the submitted credentials.
// POST /login (form: username, password, rememberMe).
//
// Failures re-render the form with the error inline: htmx requests receive
// only the "login-form" fragment with 200 so htmx swaps it, plain form posts
// receive the whole page with the error's status. Success sets the session
// cookie and redirects by role.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, service.LoginInput{}, apperrors.Wrap(err, apperrors.ErrCodeValidation,
			service.MsgMissingCredentials))
		return
	}
	in := service.LoginInput{
		Username:   r.PostFormValue("username"),
		Password:   r.PostFormValue("password"),
		RememberMe: isChecked(r.PostFormValue("rememberMe")),
	}

	sess, err := h.Svc.Login(r.Context(), in)
	if err != nil {
		h.renderLoginError(w, r, in, err)
		return
	}

	metrics.EmitLogin(h.sink(), metrics.ResultOK, nil)
	h.logger().InfoContext(r.Context(), "login succeeded",
		"portal", string(sess.User.Portal()),
		"remember_me", sess.RememberMe)

	setSessionCookie(w, r, h.Cookies, sess.ID, sess.ExpiresAt)
	redirect(w, r, sess.User.Portal().DashboardPath())
}

func (h *AuthHandlers) renderLoginError(w http.ResponseWriter, r *http.Request, in service.LoginInput, err error) {
	result := metrics.ResultError
	switch {
	case apperrors.IsValidation(err):
		result = metrics.ResultInvalid
	case apperrors.IsUnauthorized(err):
		result = metrics.ResultRejected
	case apperrors.IsCanceled(err):
		// The browser went away; nothing to warn about.
		result = metrics.ResultCanceled
	case apperrors.IsTimeout(err):
		result = metrics.ResultTimeout
		h.logger().WarnContext(r.Context(), "login timed out", "error", err)
	default:
		h.logger().WarnContext(r.Context(), "login failed", "error", err)
	}
	metrics.EmitLogin(h.sink(), result, err)

	page := h.newLoginPage(r)
	page.Username = strings.TrimSpace(in.Username)
	page.RememberMe = in.RememberMe
	page.Error = apperrors.UserMessage(err, service.MsgLoginUnavailable)

	w.Header().Set("Cache-Control", "no-store")
	var renderErr error
	if IsHTMX(r) {
		renderErr = h.T.RenderFragment(w, "login-form", page)
	} else {
		renderErr = h.T.RenderStatus(w, statusFor(err), "login-page", page)
	}
	if renderErr != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *AuthHandlers) newLoginPage(r *http.Request) *loginPage {
	return &loginPage{Layout: buildLayout(r, PageMeta{
		Title:       "Login",
		PageTitle:   AppName,
		CurrentPage: PageLogin,
	})}
}

// Logout ends the session. Backend and store failures are logged and never
// keep the browser from being signed out.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := sessionIDFromRequest(r); id != "" {
		if err := h.Svc.Logout(ctx, id); err != nil {
			h.logger().WarnContext(ctx, "logout failed", "error", err)
		}
		if err := h.Generations.Forget(ctx, id); err != nil {
			h.logger().WarnContext(ctx, "dropping render generations failed", "error", err)
		}
	}

	clearSessionCookie(w, r, h.Cookies)
	if h.Flash != nil {
		if err := h.Flash.AddFlash(w, r, MsgLoggedOut); err != nil {
			h.logger().WarnContext(ctx, "setting logout flash failed", "error", err)
		}
	}
	redirect(w, r, loginPath)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sess := h.currentSession(w, r)
	if sess == nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"portal":        sess.User.Portal(),
		"user": map[string]any{
			"id":         sess.User.ID,
			"first_name": sess.User.FirstName,
			"last_name":  sess.User.LastName,
			"email":      sess.User.Email,
			"role":       sess.User.Role,
		},
		"expires_at": sess.ExpiresAt,
	})
}

// isChecked interprets an HTML checkbox value.
func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
