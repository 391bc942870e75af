package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fstgc/vms-portal/config"
	httpx "github.com/fstgc/vms-portal/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Keys     config.Keys
	Services ServiceContainer
	Logger   *slog.Logger
	// Errors receives the serve error if the listener fails after startup.
	Errors chan<- error
}

// StartHTTPServer builds the router, binds the listen address and serves in
// the background. Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("http server config requires an AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := BuildHTTPHandler(cfg.Config, cfg.Keys, cfg.Services, logger)
	if err != nil {
		return nil, err
	}

	addr := cfg.Config.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return serve(ln, handler, logger, cfg.Errors), nil
}

// BuildHTTPHandler wires the router with CSRF, cookie and compression
// settings taken from the application config.
func BuildHTTPHandler(
	cfg *config.AppConfig,
	keys config.Keys,
	services ServiceContainer,
	logger *slog.Logger,
) (http.Handler, error) {
	if services.Auth == nil || services.Dashboard == nil {
		return nil, errors.New("http handler requires auth and dashboard services")
	}
	rs := httpx.RouterServices{
		Auth:        services.Auth,
		Dashboard:   services.Dashboard,
		Generations: services.Generations,
		Health:      services.Health,
		CSRF: httpx.CSRFConfig{
			AuthKey:        keys.CSRF,
			CookieDomain:   cfg.HTTP.CookieDomain,
			Secure:         cfg.HTTP.SecureCookies(),
			TrustedOrigins: cfg.HTTP.TrustedOrigins(),
			Logger:         logger,
		},
		Cookies: httpx.CookieConfig{
			Domain: cfg.HTTP.CookieDomain,
			Secure: cfg.HTTP.SecureCookies(),
		},
		Metrics: services.Observability.MetricsSink,
		IsDev:   cfg.IsDev,
		Logger:  logger,
	}
	// Assigned separately so a missing store stays a nil interface.
	if services.Flash != nil {
		rs.Flash = services.Flash
	}
	if cfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		rs.Compression = &httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel}
	}

	h, err := httpx.NewRouter(rs)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	return h, nil
}

func serve(ln net.Listener, handler http.Handler, logger *slog.Logger, errCh chan<- error) *http.Server {
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				select {
				case errCh <- fmt.Errorf("http server: %w", err):
				default:
				}
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}
	return nil
}
