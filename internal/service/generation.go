package service

import (
	"context"
	"log/slog"

	"github.com/fstgc/vms-portal/internal/observability/metrics"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
	"github.com/fstgc/vms-portal/internal/ports"
)

// GenerationServiceOptions groups dependencies for GenerationService.
type GenerationServiceOptions struct {
	Store   ports.GenerationStore // Required
	Logger  *slog.Logger          // Optional
	Metrics statsd.Sink           // Optional
}

// GenerationService sequences renders of the same container so that a slow
// response cannot overwrite the output of a newer request.
type GenerationService struct {
	store   ports.GenerationStore
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewGenerationService constructs a GenerationService.
func NewGenerationService(opts GenerationServiceOptions) *GenerationService {
	if opts.Store == nil {
		panic("GenerationService requires a Store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Discard
	}
	return &GenerationService{store: opts.Store, logger: logger, metrics: sink}
}

// RenderTicket identifies one render of one container.
type RenderTicket struct {
	svc        *GenerationService
	scope      string
	container  string
	Generation int64
}

// Begin starts a render of container within scope (the session). Store
// failures degrade to an always-current ticket.
func (s *GenerationService) Begin(ctx context.Context, scope, container string) RenderTicket {
	if s == nil || scope == "" {
		return RenderTicket{}
	}
	gen, err := s.store.Next(ctx, scope, container)
	if err != nil {
		s.logger.WarnContext(ctx, "generation bump failed", "container", container, "error", err)
		return RenderTicket{}
	}
	return RenderTicket{svc: s, scope: scope, container: container, Generation: gen}
}

// Supersede marks any in-flight render of containers within scope as stale.
func (s *GenerationService) Supersede(ctx context.Context, scope string, containers ...string) {
	for _, c := range containers {
		s.Begin(ctx, scope, c)
	}
}

// Superseded reports whether a newer render of the same container began
// after this ticket was issued.
func (t RenderTicket) Superseded(ctx context.Context) bool {
	if t.svc == nil || t.Generation == 0 {
		return false
	}
	cur, err := t.svc.store.Current(ctx, t.scope, t.container)
	if err != nil {
		t.svc.logger.WarnContext(ctx, "generation read failed", "container", t.container, "error", err)
		return false
	}
	if cur > t.Generation {
		metrics.EmitStaleRender(t.svc.metrics, t.container)
		return true
	}
	return false
}

// Forget drops all counters of scope.
func (s *GenerationService) Forget(ctx context.Context, scope string) error {
	if s == nil || scope == "" {
		return nil
	}
	return s.store.Forget(ctx, scope)
}
