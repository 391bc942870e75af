package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fstgc/vms-portal/config"
	"github.com/fstgc/vms-portal/internal/adapters/backendapi"
	"github.com/fstgc/vms-portal/internal/adapters/flash"
	httpx "github.com/fstgc/vms-portal/internal/http"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
	"github.com/fstgc/vms-portal/internal/ports"
	"github.com/fstgc/vms-portal/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Dashboard     *service.DashboardService
	Generations   *service.GenerationService
	Flash         *flash.Store
	Stores        Stores
	Health        httpx.Pinger
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is statsd.Discard when metrics are disabled.
	MetricsSink   statsd.Sink
	MetricsClient *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Close releases the metrics connection.
func (o ObservabilityContainer) Close() error {
	return o.MetricsClient.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	Keys        config.Keys
	RedisClient redis.UniversalClient
	// Backend overrides the REST client built from Config.Backend (tests).
	Backend ports.Backend
	Logger  *slog.Logger
}

// buildObservability configures the metrics sink. A StatsD endpoint that
// cannot be dialed disables metrics instead of failing startup.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obs := ObservabilityContainer{MetricsSink: statsd.Discard, MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return obs
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return obs
	}
	obs.MetricsSink = client
	obs.MetricsClient = client
	return obs
}

//nolint:ireturn // the backend port is what services consume.
func newBackend(deps *ServiceDeps) (ports.Backend, error) {
	if deps.Backend != nil {
		return deps.Backend, nil
	}
	client, err := backendapi.NewClient(backendapi.Config{
		BaseURL: deps.Config.Backend.BaseURL,
		Timeout: deps.Config.Backend.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	return client, nil
}

func newFlashStore(cfg *config.AppConfig, keys config.Keys) *flash.Store {
	secure := cfg.HTTP.SecureCookies()
	return flash.New(flash.Options{
		HashKey:  keys.FlashHash,
		BlockKey: keys.FlashBlock,
		Domain:   cfg.HTTP.CookieDomain,
		Secure: func(r *http.Request) bool {
			return secure || r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
		},
	})
}

// NewServices wires stores, the backend client and the domain services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require an AppConfig")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	stores, err := BuildStores(StoresConfig{
		Session:     cfg.Session,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}
	backend, err := newBackend(deps)
	if err != nil {
		return ServiceContainer{}, err
	}
	obs := buildObservability(logger, cfg.Observability)

	return ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Backend:  backend,
			Sessions: stores.Sessions,
			Config: service.AuthServiceConfig{
				SessionTTL:  cfg.Session.TTL,
				RememberTTL: cfg.Session.RememberTTL,
				Logger:      logger,
			},
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			Backend: backend,
			Logger:  logger,
			Metrics: obs.MetricsSink,
		}),
		Generations: service.NewGenerationService(service.GenerationServiceOptions{
			Store:   stores.Generations,
			Logger:  logger,
			Metrics: obs.MetricsSink,
		}),
		Flash:         newFlashStore(cfg, deps.Keys),
		Stores:        stores,
		Health:        RedisPinger(deps.RedisClient),
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Keys     config.Keys
	Services ServiceContainer
	Logger   *slog.Logger
	// Signals overrides the OS shutdown signals (tests).
	Signals <-chan os.Signal
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

type backgroundService struct {
	name  string
	start func(context.Context) error
}

type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

// launchBackground runs svc in a goroutine and forwards its failure to errCh.
func launchBackground(ctx context.Context, logger *slog.Logger, errCh chan<- error, svc backgroundService) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", svc.name, err)
			select {
			case errCh <- errMsg:
			case <-ctx.Done():
			default:
				logger.WarnContext(ctx, "dropping background service error", "service", svc.name, "error", errMsg)
			}
		}
	}()
	logger.InfoContext(ctx, "background service started", "service", svc.name)
	return done
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []backgroundService {
	var services []backgroundService
	if mem := cfg.Services.Stores.Memory; mem != nil {
		services = append(services, backgroundService{
			name: "session reaper",
			start: func(ctx context.Context) error {
				return RunSessionReaper(ctx, SessionReaperConfig{
					Store:   mem,
					Logger:  logger,
					Metrics: cfg.Services.Observability.MetricsSink,
				})
			},
		})
	}
	return services
}

// errorChannelBufferSize leaves room for every producer plus the HTTP server
// so no sender blocks during shutdown.
func errorChannelBufferSize(backgrounds int) int {
	if backgrounds < 0 {
		backgrounds = 0
	}
	return backgrounds + 1
}

// RunServicesWithShutdown starts the HTTP server and background services.
// It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config requires an AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backgrounds := buildBackgroundServices(cfg, logger)
	errCh := make(chan error, errorChannelBufferSize(len(backgrounds)))

	server, err := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Keys:     cfg.Keys,
		Services: cfg.Services,
		Logger:   logger,
		Errors:   errCh,
	})
	if err != nil {
		return err
	}

	handles := make([]backgroundServiceHandle, 0, len(backgrounds))
	for _, svc := range backgrounds {
		handles = append(handles, backgroundServiceHandle{
			name: svc.name,
			done: launchBackground(serviceCtx, logger, errCh, svc),
		})
	}

	signals := cfg.Signals
	if signals == nil {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		signals = quit
	}

	return waitForShutdown(shutdownConfig{
		cancel:      cancel,
		signals:     signals,
		errCh:       errCh,
		httpServer:  server,
		logger:      logger,
		backgrounds: handles,
	})
}

type shutdownConfig struct {
	cancel      context.CancelFunc
	signals     <-chan os.Signal
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case sig := <-cfg.signals:
		cfg.logger.Info("shutting down services...", "signal", sig.String())
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func gracefulStop(cfg shutdownConfig) error {
	// The service context is already canceled; give in-flight requests their own budget.
	if err := ShutdownHTTPServer(ShutdownConfig{
		Context: context.Background(),
		Server:  cfg.httpServer,
		Timeout: shutdownWaitTimeout,
		Logger:  cfg.logger,
	}); err != nil {
		return err
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	return nil
}

func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
