package ports

import (
	"context"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/model"
)

// Credentials is the login form payload forwarded to the backend.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string          `json:"token"`
	User  domainauth.User `json:"user"`
}

// Backend is the volunteer REST API as consumed by the portal. Every method
// except Login sends the bearer token.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Logout(ctx context.Context, token string) error
	AdminStatistics(ctx context.Context, token string) (model.AdminStatistics, error)
	ListEvents(ctx context.Context, token string, filter model.EventFilter) ([]model.Event, error)
	ListAnnouncements(ctx context.Context, token string, filter model.AnnouncementFilter) ([]model.Announcement, error)
	ListVolunteers(ctx context.Context, token string) ([]model.Volunteer, error)
	VolunteerStatistics(ctx context.Context, token string, volunteerID model.ID) (model.VolunteerStatistics, error)
}
