package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	vmsportal "github.com/fstgc/vms-portal"
	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
	"github.com/fstgc/vms-portal/internal/ports"
	"github.com/fstgc/vms-portal/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth        AuthServiceInterface // Required
	Dashboard   DashboardLoader      // Required
	Generations *service.GenerationService
	Flash       ports.FlashStore
	Health      Pinger
	CSRF        CSRFConfig
	Cookies     CookieConfig
	// Compression enables gzip when non-nil.
	Compression *CompressionConfig
	Metrics     statsd.Sink
	// TemplateFS and StaticFS override the embedded (or, in dev, on-disk) files.
	TemplateFS fs.FS
	StaticFS   fs.FS
	IsDev      bool         // Development mode flag for hot reloading, etc.
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures the portal's HTTP handler.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil || services.Dashboard == nil {
		return nil, errors.New("router requires Auth and Dashboard services")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, err := resolveTemplateFS(services)
	if err != nil {
		return nil, err
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}
	staticFS, err := resolveStaticFS(services)
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{
		T:           tr,
		Dashboard:   services.Dashboard,
		Generations: services.Generations,
		IsDev:       services.IsDev,
		Logger:      logger,
	}
	auth := &AuthHandlers{
		Svc:         services.Auth,
		T:           tr,
		Flash:       services.Flash,
		Generations: services.Generations,
		Cookies:     services.Cookies,
		Metrics:     services.Metrics,
		Logger:      logger,
	}
	guard := GuardConfig{
		Sessions: services.Auth,
		Cookies:  services.Cookies,
		Metrics:  services.Metrics,
		Logger:   logger,
	}

	mux := http.NewServeMux()
	// GET patterns also match HEAD.
	mux.Handle("GET /healthz", healthHandler(services.Health, logger))
	mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServerFS(staticFS)),
		services.IsDev))
	registerAuthRoutes(mux, auth)
	registerPortalRoutes(mux, ui, guard, domainauth.PortalAdmin)
	registerPortalRoutes(mux, ui, guard, domainauth.PortalVolunteer)
	mux.HandleFunc("GET /{$}", ui.Index)

	var app http.Handler = &notFoundHandler{mux: mux, uiHandlers: ui}
	if services.CSRF.AuthKey != nil {
		app = skipCSRF(CSRFProtection(services.CSRF)(app), app)
	}

	middlewares := []func(http.Handler) http.Handler{
		Recover(logger),
		Logging(logger),
		SecurityHeaders,
	}
	if services.Compression != nil {
		cc := *services.Compression
		if cc.Logger == nil {
			cc.Logger = logger
		}
		middlewares = append(middlewares, Compression(cc))
	}
	return Chain(app, middlewares...), nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST "+logoutPath, h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// registerPortalRoutes wires one portal's pages behind its session guard.
func registerPortalRoutes(mux *http.ServeMux, h *UIHandlers, guard GuardConfig, portal domainauth.Portal) {
	wrap := RequirePortal(guard, portal)
	base := "/" + string(portal)
	mux.Handle("GET "+base+"/{$}", wrap(h.PortalHome(portal)))
	mux.Handle("GET "+base+"/{section}", wrap(h.Section(portal)))
	mux.Handle("GET "+base+"/panels/{panel}", wrap(h.Panel(portal)))
}

// skipCSRF routes static assets and health probes around CSRF protection.
func skipCSRF(protected, plain http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isStaticPath(r.URL.Path) || r.URL.Path == "/healthz" {
			plain.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}

func isStaticPath(path string) bool {
	return strings.HasPrefix(path, "/static/")
}

// resolveTemplateFS picks the template source.
// In dev mode templates are loaded from disk for hot reloading.
func resolveTemplateFS(services RouterServices) (fs.FS, error) {
	if services.TemplateFS != nil {
		return services.TemplateFS, nil
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot), nil
	}
	sub, err := fs.Sub(vmsportal.TemplateFS, "frontend/templates")
	if err != nil {
		return nil, fmt.Errorf("templates sub-filesystem: %w", err)
	}
	return sub, nil
}

// resolveStaticFS picks the /static source, mirroring resolveTemplateFS.
func resolveStaticFS(services RouterServices) (fs.FS, error) {
	if services.StaticFS != nil {
		return services.StaticFS, nil
	}
	if services.IsDev {
		return os.DirFS("frontend/static"), nil
	}
	sub, err := fs.Sub(vmsportal.StaticFS, "frontend/static")
	if err != nil {
		return nil, fmt.Errorf("static sub-filesystem: %w", err)
	}
	return sub, nil
}

// staticWithCacheHeaders wraps a static file handler to add cache headers.
// Dev assets are never cached; embedded assets change only with a deploy.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and renders the HTML 404 page for
// requests no route matches.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}

	// No pattern: the mux answers 404 or 405. Capture it to decide.
	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status == http.StatusNotFound && h.uiHandlers != nil {
		h.uiHandlers.NotFound(w, r)
		return
	}
	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}
