package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	apperrors "github.com/fstgc/vms-portal/internal/errors"
	"github.com/fstgc/vms-portal/internal/ports"
)

// User-facing login messages.
const (
	MsgMissingCredentials = "Please enter both username and password"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoginUnavailable   = "An error occurred. Please try again later."
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultRememberTTL = 7 * 24 * time.Hour

	// sessionTouchInterval bounds how often an active session's expiry is
	// written back to the store.
	sessionTouchInterval = time.Minute
)

var (
	// ErrSessionExpired is returned for a session past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalid is returned for a stored session that lacks a token or
	// a recognizable role. Such sessions are deleted on sight.
	ErrSessionInvalid = errors.New("session invalid")
)

// backendRejection is a non-2xx answer from the backend.
type backendRejection interface {
	StatusCode() int
	BackendMessage() string
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend  ports.Backend      // Required
	Sessions ports.SessionStore // Required
	Config   AuthServiceConfig
}

// AuthServiceConfig tunes session lifetimes.
type AuthServiceConfig struct {
	SessionTTL  time.Duration
	RememberTTL time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// AuthService logs users in against the backend and keeps their server-side session.
type AuthService struct {
	backend     ports.Backend
	sessions    ports.SessionStore
	sessionTTL  time.Duration
	rememberTTL time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Backend == nil || opts.Sessions == nil {
		panic("AuthService requires Backend and Sessions")
	}
	cfg := opts.Config
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = defaultRememberTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AuthService{
		backend:     opts.Backend,
		sessions:    opts.Sessions,
		sessionTTL:  cfg.SessionTTL,
		rememberTTL: cfg.RememberTTL,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
}

// LoginInput is the submitted login form.
type LoginInput struct {
	Username   string
	Password   string
	RememberMe bool
}

// Login validates input, authenticates against the backend and persists a
// session. Errors are *apperrors.AppError whose Message is safe to show.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domainauth.Session, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.Validation(MsgMissingCredentials)
	}

	res, err := s.backend.Login(ctx, ports.Credentials{
		Username:   username,
		Password:   in.Password,
		RememberMe: in.RememberMe,
	})
	if err != nil {
		return nil, loginError(err)
	}

	if res.User.Portal() == domainauth.PortalNone {
		return nil, apperrors.Wrap(
			fmt.Errorf("login: unrecognized role %q / userType %q", res.User.Role, res.User.UserType),
			apperrors.ErrCodeUpstream, MsgLoginUnavailable)
	}

	now := s.now()
	sess := domainauth.Session{
		ID:         generateSessionID(),
		Token:      res.Token,
		User:       res.User,
		RememberMe: in.RememberMe,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.lifetime(in.RememberMe)),
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return nil, apperrors.Wrap(fmt.Errorf("save session: %w", saveErr), apperrors.ErrCodeInternal, MsgLoginUnavailable)
	}

	return &sess, nil
}

// loginError maps a backend failure onto the message the form shows.
// Rejections (non-2xx) surface the backend's own message when it sent one.
func loginError(err error) error {
	var rejected backendRejection
	if errors.As(err, &rejected) {
		msg := strings.TrimSpace(rejected.BackendMessage())
		if msg == "" {
			msg = MsgInvalidCredentials
		}
		return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, msg)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, MsgLoginUnavailable)
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, MsgLoginUnavailable)
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeUpstream, MsgLoginUnavailable)
	}
}

// lifetime returns how long a session lives after its last request.
func (s *AuthService) lifetime(rememberMe bool) time.Duration {
	if rememberMe {
		return s.rememberTTL
	}
	return s.sessionTTL
}

// GetSession retrieves a session by ID. Unknown sessions wrap
// ports.ErrSessionNotFound; expired and malformed ones are deleted. A valid
// session has its idle expiry pushed forward.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, ports.ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var reason error
	switch {
	case session.Expired(s.now()):
		reason = ErrSessionExpired
	case !session.Valid() || session.ID != sessionID:
		reason = ErrSessionInvalid
	default:
		return s.slide(ctx, session)
	}

	if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
		return nil, errors.Join(reason, fmt.Errorf("delete session: %w", deleteErr))
	}
	return nil, reason
}

// slide pushes an active session's expiry out by its idle lifetime. A failed
// write keeps the session usable until its stored expiry.
func (s *AuthService) slide(ctx context.Context, session domainauth.Session) (*domainauth.Session, error) {
	next := s.now().Add(s.lifetime(session.RememberMe))
	if next.Sub(session.ExpiresAt) < sessionTouchInterval {
		return &session, nil
	}

	err := s.sessions.Touch(ctx, session.ID, next)
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		return nil, fmt.Errorf("touch session: %w", err)
	case err != nil:
		s.logger.WarnContext(ctx, "session touch failed", "error", err)
		return &session, nil
	}
	session.ExpiresAt = next
	return &session, nil
}

// Logout ends a session: best-effort backend logout, then local deletion.
// The backend call never blocks local cleanup; only deletion errors are returned.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err == nil && sess.Token != "" {
		if logoutErr := s.backend.Logout(ctx, sess.Token); logoutErr != nil {
			s.logger.WarnContext(ctx, "backend logout failed", "error", logoutErr)
		}
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	return uuid.NewString()
}
