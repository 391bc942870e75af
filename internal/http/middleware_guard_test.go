package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/model"
	mockauth "github.com/fstgc/vms-portal/internal/mocks/auth"
	"github.com/fstgc/vms-portal/internal/ports"
	"github.com/fstgc/vms-portal/internal/service"
)

// Only tests that admit a request set backend expectations: gomock fails the
// others on any call, which proves the guard decides before a loader runs.

func TestRequirePortal_NoCookieRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin/dashboard", "/admin/volunteers", "/volunteer/events", "/admin/panels/stats"} {
		t.Run(path, func(t *testing.T) {
			rr := env.do(reqOpts{Path: path})
			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, "/login", rr.Header().Get("Location"))
			assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
			assert.NotContains(t, rr.Body.String(), "page-title")
		})
	}
}

func TestRequirePortal_HTMXGetsHXRedirect(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Path: "/admin/events", HTMX: true})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Hx-Redirect"))
	assert.Empty(t, rr.Body.String())
}

func TestRequirePortal_UnknownSessionClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(reqOpts{Path: "/admin/dashboard", Session: "does-not-exist"})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	requireSessionCleared(t, rr)
}

func TestRequirePortal_ExpiredSessionIsDeleted(t *testing.T) {
	env := newTestEnv(t)
	env.Sessions.Put(domainauth.Session{
		ID:        "old",
		Token:     "tok",
		User:      adminUser(),
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	rr := env.do(reqOpts{Path: "/admin/dashboard", Session: "old"})
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, env.Sessions.Has("old"))
	requireSessionCleared(t, rr)
}

func TestRequirePortal_MalformedSessionFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		sess domainauth.Session
	}{
		{
			name: "missing token",
			sess: domainauth.Session{ID: "bad", User: adminUser(), ExpiresAt: time.Now().Add(time.Hour)},
		},
		{
			name: "unknown role",
			sess: domainauth.Session{
				ID:        "bad",
				Token:     "tok",
				User:      domainauth.User{ID: "9", FirstName: "Eve", Role: "auditor"},
				ExpiresAt: time.Now().Add(time.Hour),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.Sessions.Put(tt.sess)

			rr := env.do(reqOpts{Path: "/volunteer/dashboard", Session: "bad"})
			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, "/login", rr.Header().Get("Location"))
			assert.False(t, env.Sessions.Has("bad"), "malformed session must be deleted")
			requireSessionCleared(t, rr)
		})
	}
}

func TestRequirePortal_RoleMismatchBouncesToOwnDashboard(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin()
	volunteer := env.seedVolunteer()

	rr := env.do(reqOpts{Path: "/admin/events", Session: volunteer})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/volunteer/dashboard", rr.Header().Get("Location"))

	rr = env.do(reqOpts{Path: "/volunteer/dashboard", Session: admin})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/dashboard", rr.Header().Get("Location"))
	assert.Nil(t, findCookie(t, rr, SessionCookieName), "a valid session keeps its cookie")
}

func TestRequirePortal_ActivitySlidesSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	env.Sessions.Put(domainauth.Session{
		ID:        adminSessionID,
		Token:     adminToken,
		User:      adminUser(),
		CreatedAt: time.Now().Add(-25 * time.Minute),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	})
	env.Backend.EXPECT().ListEvents(gomock.Any(), adminToken, model.EventFilter{}).Return(nil, nil)

	rr := env.do(reqOpts{Path: "/admin/events", Session: adminSessionID, HTMX: true})
	require.Equal(t, http.StatusOK, rr.Code)

	c := findCookie(t, rr, SessionCookieName)
	require.NotNil(t, c, "an admitted request re-issues the session cookie")
	assert.Equal(t, adminSessionID, c.Value)
	maxAge := time.Duration(c.MaxAge) * time.Second
	assert.Greater(t, maxAge, 29*time.Minute)
	assert.LessOrEqual(t, maxAge, 30*time.Minute)

	stored, err := env.Sessions.Get(context.Background(), adminSessionID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), stored.ExpiresAt, 5*time.Second)
	assert.Equal(t, 1, env.Sessions.Touches())
}

func TestRequirePortal_StoreErrorKeepsCookie(t *testing.T) {
	env := newTestEnv(t, withSessionStore(func(m *mockauth.MemorySessionStore) ports.SessionStore {
		return &mockauth.FailingSessionStore{SessionStore: m, GetErr: errors.New("redis: connection refused")}
	}))
	id := env.seedAdmin()

	rr := env.do(reqOpts{Path: "/admin/dashboard", Session: id})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Nil(t, findCookie(t, rr, SessionCookieName), "a transient store failure must not sign the user out")
}

func TestGuardReason(t *testing.T) {
	assert.Equal(t, reasonNotFound, guardReason(ports.ErrSessionNotFound))
	assert.Equal(t, reasonExpired, guardReason(service.ErrSessionExpired))
	assert.Equal(t, reasonInvalid, guardReason(errors.Join(service.ErrSessionInvalid, errors.New("delete failed"))))
	assert.Equal(t, reasonStoreError, guardReason(errors.New("i/o timeout")))
}
