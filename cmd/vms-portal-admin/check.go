package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fstgc/vms-portal/config"
	"github.com/fstgc/vms-portal/internal/adapters/backendapi"
	"github.com/fstgc/vms-portal/internal/bootstrap"
)

type configRow struct {
	key   string
	value string
}

// configRows lists the effective settings under their environment names.
// Secrets only report whether they are set.
func configRows(cfg *config.AppConfig) []configRow {
	rows := []configRow{
		{"DEV", strconv.FormatBool(cfg.IsDev)},
		{"LOG_LEVEL", cfg.LogLevel},
		{"APP_SECRET", redactSecret(cfg.Secret)},
		{"HTTP_ADDR", cfg.HTTP.Addr},
		{"APP_BASE_URL", cfg.HTTP.BaseURL},
		{"APP_COOKIE_DOMAIN", orDash(cfg.HTTP.CookieDomain)},
		{"secure cookies", strconv.FormatBool(cfg.HTTP.SecureCookies())},
		{"HTTP_COMPRESSION_ENABLED", strconv.FormatBool(cfg.HTTP.CompressionEnabled)},
		{"HTTP_COMPRESSION_LEVEL", strconv.Itoa(cfg.HTTP.CompressionLevel)},
		{"BACKEND_BASE_URL", cfg.Backend.BaseURL},
		{"BACKEND_TIMEOUT", cfg.Backend.Timeout.String()},
		{"SESSION_STORE", string(cfg.Session.Store)},
		{"SESSION_TTL", cfg.Session.TTL.String()},
		{"SESSION_REMEMBER_TTL", cfg.Session.RememberTTL.String()},
		{"SESSION_KEY_PREFIX", cfg.Session.KeyPrefix},
	}
	if bootstrap.NeedsRedis(cfg) {
		rows = append(rows, redisRows(cfg.Redis)...)
	}
	rows = append(rows,
		configRow{"OBSERVABILITY_METRICS_ENABLED", strconv.FormatBool(cfg.Observability.Metrics.Enabled)},
	)
	if cfg.Observability.Metrics.IsEnabled() {
		rows = append(rows,
			configRow{"OBSERVABILITY_METRICS_STATSD_ADDRESS", cfg.Observability.Metrics.StatsdAddress},
			configRow{"OBSERVABILITY_METRICS_PREFIX", cfg.Observability.Metrics.Prefix},
		)
	}
	return rows
}

func redisRows(r config.RedisConfig) []configRow {
	switch {
	case r.UseCluster:
		return []configRow{
			{"REDIS_USE_CLUSTER", "true"},
			{"REDIS_CLUSTER_NODES", orDash(strings.Join(r.ClusterNodes, ","))},
			{"REDIS_URI", redactURI(r.URI)},
			{"REDIS_PASSWORD", redactSecret(r.Password)},
		}
	case r.UseSentinel:
		return []configRow{
			{"REDIS_USE_SENTINEL", "true"},
			{"REDIS_SENTINEL_NODES", strings.Join(r.SentinelNodes, ",")},
			{"REDIS_SENTINEL_MASTER_NAME", r.SentinelMasterName},
			{"REDIS_PASSWORD", redactSecret(r.Password)},
			{"REDIS_SENTINEL_PASSWORD", redactSecret(r.SentinelPassword)},
		}
	default:
		return []configRow{
			{"REDIS_URI", redactURI(r.URI)},
			{"REDIS_PASSWORD", redactSecret(r.Password)},
		}
	}
}

func redactSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	return fmt.Sprintf("(set, %d chars)", len(s))
}

func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Redacted()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runCheckConfig(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("check-config", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return writeConfigReport(cmdCtx.Out, &cmdCtx.Config)
}

func writeConfigReport(w io.Writer, cfg *config.AppConfig) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range configRows(cfg) {
		if err := writef(tw, "%s\t%s\n", row.key, row.value); err != nil {
			return fmt.Errorf("write config row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush config table: %w", err)
	}

	if _, err := cfg.DeriveKeys(); err != nil {
		return fmt.Errorf("derive keys: %w", err)
	}
	if cfg.Secret == "" {
		return writeln(w, "\nconfiguration OK (development mode: keys are random per process)")
	}
	return writeln(w, "\nconfiguration OK")
}

type pingOptions struct {
	Timeout time.Duration
}

func parsePingFlags(args []string, stderr io.Writer) (pingOptions, error) {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts pingOptions
	fs.DurationVar(&opts.Timeout, "timeout", 5*time.Second, "Per-dependency timeout")
	if err := fs.Parse(args); err != nil {
		return pingOptions{}, err
	}
	if opts.Timeout <= 0 {
		return pingOptions{}, errors.New("--timeout must be positive")
	}
	return opts, nil
}

// runPing checks each dependency and reports all failures together.
func runPing(cmdCtx *commandContext, args []string) error {
	opts, err := parsePingFlags(args, cmdCtx.Out)
	if err != nil {
		return err
	}

	var errs []error
	if redisErr := pingRedis(cmdCtx, opts.Timeout); redisErr != nil {
		errs = append(errs, redisErr)
	}
	if backendErr := pingBackend(cmdCtx, opts.Timeout); backendErr != nil {
		errs = append(errs, backendErr)
	}
	return errors.Join(errs...)
}

func pingRedis(cmdCtx *commandContext, timeout time.Duration) error {
	if !bootstrap.NeedsRedis(&cmdCtx.Config) {
		return writeln(cmdCtx.Out, "redis:   skipped (SESSION_STORE=memory)")
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	start := time.Now()
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisConfig{
		Redis:  cmdCtx.Config.Redis,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		_ = writef(cmdCtx.Out, "redis:   FAIL %v\n", err)
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = client.Close() }()
	return writef(cmdCtx.Out, "redis:   ok (%s)\n", time.Since(start).Round(time.Millisecond))
}

func pingBackend(cmdCtx *commandContext, timeout time.Duration) error {
	client, err := backendapi.NewClient(backendapi.Config{
		BaseURL: cmdCtx.Config.Backend.BaseURL,
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	start := time.Now()
	if reachErr := client.Reachable(ctx); reachErr != nil {
		_ = writef(cmdCtx.Out, "backend: FAIL %v\n", reachErr)
		return fmt.Errorf("backend: %w", reachErr)
	}
	return writef(cmdCtx.Out, "backend: ok %s (%s)\n", cmdCtx.Config.Backend.BaseURL, time.Since(start).Round(time.Millisecond))
}
