package httpx

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "github.com/fstgc/vms-portal/internal/errors"
	"github.com/fstgc/vms-portal/internal/ports"
)

func TestRouter_RootRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Path: "/"})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestRouter_UnknownPathRendersNotFoundPage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Path: "/no/such/page"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "The page you&#39;re looking for doesn&#39;t exist.")
	assert.Contains(t, rr.Body.String(), `href="/login"`)
}

func TestRouter_UnknownPathJSONClient(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Path: "/api/nothing", Headers: map[string]string{"Accept": "application/json"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"error":"not_found","message":"not found"}`, rr.Body.String())
}

func TestErrorPageMessage(t *testing.T) {
	timeout := apperrors.Wrap(errors.New("slow backend"), apperrors.ErrCodeTimeout, "An error occurred. Please try again later.")
	canceled := apperrors.Wrap(errors.New("gone"), apperrors.ErrCodeCanceled, "")

	assert.Equal(t, "Request timed out. Please try again.", messageFor(timeout, statusFor(timeout)))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(timeout))
	assert.Equal(t, "Request was canceled.", messageFor(canceled, statusFor(canceled)))
	assert.Equal(t, "Request timed out. Please try again.", messageFor(context.DeadlineExceeded, 0))
	assert.Equal(t, "The page you're looking for doesn't exist.", messageFor(apperrors.NotFound("x"), http.StatusNotFound))
	assert.Equal(t, "An error occurred. Please try again.", messageFor(errors.New("dial tcp: refused"), http.StatusInternalServerError))
}

func TestRouter_MethodNotAllowedPassesThrough(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Method: http.MethodDelete, Path: "/login"})
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Allow"))
}

func TestRouter_StaticAssets(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Path: "/static/js/app.js"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Body.String(), "nav:activate")

	rr = env.do(reqOpts{Path: "/static/missing.css"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_HealthAndSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Path: "/healthz"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = env.do(reqOpts{Method: http.MethodHead, Path: "/healthz"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, rr.Body.Len())
}

func TestNewRouter_RequiresServices(t *testing.T) {
	_, err := NewRouter(RouterServices{})
	assert.Error(t, err)
}

var csrfFieldRe = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func TestRouter_CSRF(t *testing.T) {
	env := newTestEnv(t, withCSRF())

	// Unsafe requests without a token are rejected before any handler runs.
	rr := env.do(reqOpts{Method: http.MethodPost, Path: "/login", Form: map[string]string{"username": "ada"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(reqOpts{Method: http.MethodPost, Path: "/logout"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The login page issues the cookie, the hidden field and the htmx header.
	page := env.do(reqOpts{Path: "/login"})
	require.Equal(t, http.StatusOK, page.Code)
	csrfCookie := findCookie(t, page, CSRFCookieName)
	require.NotNil(t, csrfCookie)
	m := csrfFieldRe.FindStringSubmatch(page.Body.String())
	require.Len(t, m, 2, "login form carries the csrf field")
	assert.Contains(t, page.Body.String(), `hx-headers='{"X-CSRF-Token": "`)

	env.Backend.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(ports.LoginResult{Token: "tok", User: adminUser()}, nil)

	rr = env.do(reqOpts{
		Method:  http.MethodPost,
		Path:    "/login",
		HTMX:    true,
		Form:    map[string]string{"username": "ada", "password": "pw"},
		Headers: map[string]string{CSRFHeaderName: m[1]},
		Cookies: []*http.Cookie{{Name: CSRFCookieName, Value: csrfCookie.Value}},
	})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/admin/dashboard", rr.Header().Get("Hx-Redirect"))

	// Static assets and health checks bypass CSRF entirely.
	rr = env.do(reqOpts{Path: "/healthz"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, findCookie(t, rr, CSRFCookieName))
}
