package httpx

import (
	"context"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
)

type sessionKey struct{}

// SetSessionInContext attaches the guard-approved session to ctx. A nil
// session leaves ctx untouched.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session placed by the guard, or nil on
// routes the guard does not cover.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	s, _ := ctx.Value(sessionKey{}).(*domainauth.Session)
	return s
}
