// Package reaper periodically drops expired sessions from stores that do not
// expire keys on their own.
package reaper

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/fstgc/vms-portal/internal/observability/statsd"
)

// DefaultInterval is how often expired sessions are swept.
const DefaultInterval = time.Minute

// Sweeper removes expired entries and reports how many it dropped.
type Sweeper interface {
	Sweep() int
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Store    Sweeper // Required
	Interval time.Duration
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// Runner sweeps a store on a fixed interval until its context ends.
type Runner struct {
	store    Sweeper
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewRunner creates a new sweeper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Store == nil {
		return nil, errors.New("reaper requires a store")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = statsd.Discard
	}
	return &Runner{
		store:    opts.Store,
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "session_reaper"),
		metrics:  opts.Metrics,
	}, nil
}

// Run sweeps once after a short jitter and then on every tick. It returns nil
// when ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting session reaper", "interval", r.interval)
	r.waitWithJitter(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "session reaper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			r.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single sweep and returns the number of dropped sessions.
func (r *Runner) SweepOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	n := r.store.Sweep()
	r.metrics.Count("sessions.swept", int64(n), nil)
	if n > 0 {
		r.logger.DebugContext(ctx, "expired sessions swept", "count", n)
	}
	return n
}

func (r *Runner) waitWithJitter(ctx context.Context) {
	maxJitter := int64(r.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		r.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
