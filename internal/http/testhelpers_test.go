package httpx

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fstgc/vms-portal/internal/adapters/flash"
	"github.com/fstgc/vms-portal/internal/adapters/memory"
	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/mocks"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
	mockauth "github.com/fstgc/vms-portal/internal/mocks/auth"
	"github.com/fstgc/vms-portal/internal/ports"
	"github.com/fstgc/vms-portal/internal/service"
)

const (
	adminSessionID     = "sess-admin"
	volunteerSessionID = "sess-volunteer"
	adminToken         = "tok-admin"
	volunteerToken     = "tok-volunteer"
)

// RequireTemplateRenderer creates a TemplateRenderer from the on-disk templates.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv is a fully wired router over a gomock backend and in-memory stores.
type testEnv struct {
	t           *testing.T
	Backend     *mocks.MockBackend
	Sessions    *mockauth.MemorySessionStore
	Generations *service.GenerationService
	Handler     http.Handler
}

type envOption func(*RouterServices, *envDeps)

type envDeps struct {
	sessions ports.SessionStore
}

// withSessionStore wraps the in-memory session store behind the auth service.
func withSessionStore(wrap func(*mockauth.MemorySessionStore) ports.SessionStore) envOption {
	return func(_ *RouterServices, d *envDeps) {
		d.sessions = wrap(d.sessions.(*mockauth.MemorySessionStore))
	}
}

// withMetrics routes handler metrics into sink.
func withMetrics(sink statsd.Sink) envOption {
	return func(rs *RouterServices, _ *envDeps) {
		rs.Metrics = sink
	}
}

// countSink records Count calls by name.
type countSink struct {
	mu     sync.Mutex
	counts map[string][]map[string]string
}

func (s *countSink) Count(name string, _ int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = make(map[string][]map[string]string)
	}
	s.counts[name] = append(s.counts[name], tags)
}

func (s *countSink) Gauge(string, float64, map[string]string)        {}
func (s *countSink) Timing(string, time.Duration, map[string]string) {}

func (s *countSink) tags(name string) []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[name]
}

// withCSRF enables CSRF protection with a fixed key.
func withCSRF() envOption {
	return func(rs *RouterServices, _ *envDeps) {
		rs.CSRF = CSRFConfig{AuthKey: bytes.Repeat([]byte("k"), 32), Logger: discardLogger()}
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	store := mockauth.NewMemorySessionStore()
	logger := discardLogger()

	gens := service.NewGenerationService(service.GenerationServiceOptions{
		Store:  memory.NewGenerationStore(),
		Logger: logger,
	})
	rs := RouterServices{
		Dashboard:   service.NewDashboardService(service.DashboardServiceOptions{Backend: backend, Logger: logger}),
		Generations: gens,
		Flash: flash.New(flash.Options{
			HashKey:  bytes.Repeat([]byte("h"), 32),
			BlockKey: bytes.Repeat([]byte("b"), 32),
		}),
		TemplateFS: os.DirFS(TemplatePathFromTest),
		StaticFS:   os.DirFS("../../frontend/static"),
		Logger:     logger,
	}
	deps := envDeps{sessions: store}
	for _, opt := range opts {
		opt(&rs, &deps)
	}
	rs.Auth = service.NewAuthService(service.AuthServiceOptions{
		Backend:  backend,
		Sessions: deps.sessions,
		Config:   service.AuthServiceConfig{Logger: logger},
	})

	h, err := NewRouter(rs)
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
	}
	return &testEnv{t: t, Backend: backend, Sessions: store, Generations: gens, Handler: h}
}

func adminUser() domainauth.User {
	return domainauth.User{
		ID:        "1",
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.org",
		Role:      domainauth.RoleAdmin,
		UserType:  domainauth.UserTypeAdmin,
	}
}

func volunteerUser() domainauth.User {
	return domainauth.User{
		ID:         "42",
		Username:   "grace",
		FirstName:  "grace",
		LastName:   "Hopper",
		Email:      "grace@example.org",
		Role:       domainauth.RoleVolunteer,
		UserType:   domainauth.UserTypeVolunteer,
		TotalHours: 12.5,
	}
}

// seed plants a valid session for user and returns its id.
func (e *testEnv) seed(id, token string, user domainauth.User) string {
	e.Sessions.Put(domainauth.Session{
		ID:        id,
		Token:     token,
		User:      user,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	return id
}

func (e *testEnv) seedAdmin() string { return e.seed(adminSessionID, adminToken, adminUser()) }

func (e *testEnv) seedVolunteer() string {
	return e.seed(volunteerSessionID, volunteerToken, volunteerUser())
}

// reqOpts describes one request against the router.
type reqOpts struct {
	Method  string
	Path    string
	Session string
	HTMX    bool
	Form    map[string]string
	Headers map[string]string
	Cookies []*http.Cookie
}

func (e *testEnv) do(o reqOpts) *httptest.ResponseRecorder {
	e.t.Helper()
	method := o.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if o.Form != nil {
		form := url.Values{}
		for k, v := range o.Form {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, o.Path, body)
	if o.Form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	r.Header.Set("Accept", "text/html")
	if o.HTMX {
		r.Header.Set("Hx-Request", "true")
	}
	for k, v := range o.Headers {
		r.Header.Set(k, v)
	}
	if o.Session != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: o.Session})
	}
	for _, c := range o.Cookies {
		r.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	e.Handler.ServeHTTP(rr, r)
	return rr
}

// findCookie returns the named Set-Cookie of a response.
func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	res := rr.Result()
	t.Cleanup(func() { _ = res.Body.Close() })
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// requireSessionCleared asserts the response expires the session cookie.
func requireSessionCleared(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	c := findCookie(t, rr, SessionCookieName)
	require.NotNil(t, c, "session cookie should be cleared")
	require.Empty(t, c.Value)
	require.Negative(t, c.MaxAge)
}
