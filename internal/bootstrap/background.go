package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fstgc/vms-portal/internal/adapters/reaper"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
)

// SessionReaperConfig contains configuration for the in-memory session sweeper.
type SessionReaperConfig struct {
	Store    reaper.Sweeper
	Interval time.Duration
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// RunSessionReaper sweeps expired in-memory sessions until ctx is canceled.
func RunSessionReaper(ctx context.Context, cfg SessionReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		Store:    cfg.Store,
		Interval: cfg.Interval,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create session reaper: %w", err)
	}
	return runner.Run(ctx)
}
