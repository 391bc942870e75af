package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fstgc/vms-portal/config"
	redisadapter "github.com/fstgc/vms-portal/internal/adapters/redis"
	"github.com/fstgc/vms-portal/internal/bootstrap"
	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
)

var errMemorySessions = errors.New("SESSION_STORE=memory keeps sessions inside the portal process; nothing to inspect")

// sessionFilter selects sessions; empty fields match everything.
type sessionFilter struct {
	ID     string
	UserID string
	Portal string
}

func (f sessionFilter) empty() bool {
	return f.ID == "" && f.UserID == "" && f.Portal == ""
}

func (f sessionFilter) match(s domainauth.Session) bool {
	if f.ID != "" && s.ID != f.ID {
		return false
	}
	if f.UserID != "" && string(s.User.ID) != f.UserID {
		return false
	}
	if f.Portal != "" && string(s.User.Portal()) != f.Portal {
		return false
	}
	return true
}

func (f sessionFilter) String() string {
	var parts []string
	if f.ID != "" {
		parts = append(parts, "session "+f.ID)
	}
	if f.UserID != "" {
		parts = append(parts, "user "+f.UserID)
	}
	if f.Portal != "" {
		parts = append(parts, f.Portal+" portal")
	}
	if len(parts) == 0 {
		return "all sessions"
	}
	return strings.Join(parts, ", ")
}

func bindFilterFlags(fs *flag.FlagSet, f *sessionFilter) {
	fs.StringVar(&f.ID, "id", "", "Session ID")
	fs.StringVar(&f.UserID, "user", "", "Backend user ID")
	fs.StringVar(&f.Portal, "portal", "", "Portal the user belongs to (admin|volunteer)")
}

func normalizeFilter(f *sessionFilter) error {
	f.ID = strings.TrimSpace(f.ID)
	f.UserID = strings.TrimSpace(f.UserID)
	f.Portal = strings.ToLower(strings.TrimSpace(f.Portal))
	switch domainauth.Portal(f.Portal) {
	case domainauth.PortalNone, domainauth.PortalAdmin, domainauth.PortalVolunteer:
		return nil
	default:
		return fmt.Errorf("--portal must be admin or volunteer, got %q", f.Portal)
	}
}

type listOptions struct {
	Filter sessionFilter
	Limit  int
	JSON   bool
}

func parseListFlags(args []string, stderr io.Writer) (listOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts listOptions
	bindFilterFlags(fs, &opts.Filter)
	fs.IntVar(&opts.Limit, "limit", 100, "Maximum sessions to print (0 = no limit)")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	if opts.Limit < 0 {
		return listOptions{}, errors.New("--limit must be >= 0")
	}
	if err := normalizeFilter(&opts.Filter); err != nil {
		return listOptions{}, err
	}
	return opts, nil
}

type revokeOptions struct {
	Filter sessionFilter
	All    bool
	DryRun bool
	Yes    bool
}

func (o revokeOptions) IsDryRun() bool    { return o.DryRun }
func (o revokeOptions) IsYes() bool       { return o.Yes }
func (o revokeOptions) GetTarget() string { return o.Filter.String() }

func parseRevokeFlags(args []string, stderr io.Writer) (revokeOptions, error) {
	fs := flag.NewFlagSet("revoke-sessions", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts revokeOptions
	bindFilterFlags(fs, &opts.Filter)
	fs.BoolVar(&opts.All, "all", false, "Revoke every session")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print actions without executing")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return revokeOptions{}, err
	}
	if err := normalizeFilter(&opts.Filter); err != nil {
		return revokeOptions{}, err
	}
	if opts.All == !opts.Filter.empty() {
		return revokeOptions{}, errors.New("specify --id, --user or --portal, or --all (not both)")
	}
	return opts, nil
}

// sessionView is what the CLI prints. The backend token is never included.
type sessionView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Portal     string    `json:"portal"`
	RememberMe bool      `json:"remember_me"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTL        string    `json:"ttl"`
}

func newSessionView(s redisadapter.StoredSession) sessionView {
	return sessionView{
		ID:         s.Session.ID,
		UserID:     string(s.Session.User.ID),
		Name:       s.Session.User.DisplayName(),
		Email:      s.Session.User.Email,
		Role:       string(s.Session.User.Role),
		Portal:     string(s.Session.User.Portal()),
		RememberMe: s.Session.RememberMe,
		CreatedAt:  s.Session.CreatedAt,
		ExpiresAt:  s.Session.ExpiresAt,
		TTL:        formatRedisTTL(s.TTL),
	}
}

// sessionConn is an open Redis connection with the portal's stores on top.
type sessionConn struct {
	client      redis.UniversalClient
	sessions    *redisadapter.SessionStore
	generations *redisadapter.GenerationStore
}

func (c *sessionConn) Close() error { return c.client.Close() }

func openSessions(cmdCtx *commandContext) (*sessionConn, error) {
	if cmdCtx.Config.Session.Store == config.SessionStoreMemory {
		return nil, errMemorySessions
	}
	client, err := bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.RedisConfig{
		Redis:  cmdCtx.Config.Redis,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &sessionConn{
		client: client,
		sessions: redisadapter.NewSessionStore(client, redisadapter.SessionStoreOptions{
			Prefix: cmdCtx.Config.Session.KeyPrefix,
		}),
		generations: redisadapter.NewGenerationStore(client, redisadapter.DefaultGenerationPrefix,
			cmdCtx.Config.Session.RememberTTL),
	}, nil
}

// collectSessions returns the matching sessions, soonest expiry first.
func collectSessions(cmdCtx *commandContext, store *redisadapter.SessionStore, f sessionFilter) ([]redisadapter.StoredSession, error) {
	var out []redisadapter.StoredSession
	err := store.Each(cmdCtx.Ctx, func(s redisadapter.StoredSession) error {
		if f.match(s.Session) {
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Session.ExpiresAt.Before(out[j].Session.ExpiresAt)
	})
	return out, nil
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags(args, cmdCtx.Out)
	if err != nil {
		return err
	}
	conn, err := openSessions(cmdCtx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	found, err := collectSessions(cmdCtx, conn.sessions, opts.Filter)
	if err != nil {
		return err
	}
	return printSessions(cmdCtx.Out, found, opts)
}

func printSessions(w io.Writer, found []redisadapter.StoredSession, opts listOptions) error {
	total := len(found)
	if opts.Limit > 0 && len(found) > opts.Limit {
		found = found[:opts.Limit]
	}
	views := make([]sessionView, 0, len(found))
	for _, s := range found {
		views = append(views, newSessionView(s))
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(views); err != nil {
			return fmt.Errorf("encode sessions: %w", err)
		}
		return nil
	}

	if total == 0 {
		return writeln(w, "(no sessions found)")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "SESSION\tUSER\tNAME\tPORTAL\tREMEMBER\tEXPIRES\tTTL"); err != nil {
		return fmt.Errorf("write sessions header row: %w", err)
	}
	for _, v := range views {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			v.ID, v.UserID, v.Name, v.Portal, v.RememberMe, formatTimestamp(v.ExpiresAt), v.TTL); err != nil {
			return fmt.Errorf("write session row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush sessions table: %w", err)
	}
	if total > len(views) {
		return writef(w, "\nShowing %d of %d sessions (raise --limit to see more)\n", len(views), total)
	}
	return writef(w, "\nTotal sessions: %d\n", total)
}

func runRevokeSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseRevokeFlags(args, cmdCtx.Out)
	if err != nil {
		return err
	}
	if confirmErr := confirmAction(cmdCtx, opts, "revoke sessions"); confirmErr != nil {
		return confirmErr
	}
	conn, err := openSessions(cmdCtx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	found, err := collectSessions(cmdCtx, conn.sessions, opts.Filter)
	if err != nil {
		return err
	}
	return revokeSessions(cmdCtx, conn, found, opts.DryRun)
}

func revokeSessions(cmdCtx *commandContext, conn *sessionConn, found []redisadapter.StoredSession, dryRun bool) error {
	var errs []error
	revoked := 0
	for _, s := range found {
		if dryRun {
			if err := writef(cmdCtx.Out, "would revoke %s (user %s)\n", s.Session.ID, s.Session.User.ID); err != nil {
				return err
			}
			continue
		}
		if err := conn.sessions.Delete(cmdCtx.Ctx, s.Session.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete session %s: %w", s.Session.ID, err))
			continue
		}
		if err := conn.generations.Forget(cmdCtx.Ctx, s.Session.ID); err != nil {
			cmdCtx.Logger.Warn("forget render generations failed", "session", s.Session.ID, "error", err)
		}
		revoked++
	}

	if dryRun {
		return writef(cmdCtx.Out, "Dry run: %d session(s) match\n", len(found))
	}
	if err := writef(cmdCtx.Out, "Revoked %d of %d session(s)\n", revoked, len(found)); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatRedisTTL(ttl time.Duration) string {
	if ttl == -1 {
		return "no expiry"
	}
	if ttl == -2 {
		return "missing"
	}
	if ttl < 0 {
		return ttl.String()
	}
	return ttl.Round(time.Second).String()
}
