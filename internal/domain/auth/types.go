package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"

	"github.com/fstgc/vms-portal/internal/domain/model"
)

// Role is the backend's authorization role for a user.
// Keep string form for easy persistence.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleVolunteer  Role = "volunteer"
)

// UserType is the backend's coarse account kind.
type UserType string

const (
	UserTypeAdmin     UserType = "admin"
	UserTypeVolunteer UserType = "volunteer"
)

// Portal identifies which dashboard a user belongs on.
type Portal string

const (
	PortalNone      Portal = ""
	PortalAdmin     Portal = "admin"
	PortalVolunteer Portal = "volunteer"
)

// DashboardPath returns the landing page of the portal, or the login page for PortalNone.
func (p Portal) DashboardPath() string {
	switch p {
	case PortalAdmin:
		return "/admin/dashboard"
	case PortalVolunteer:
		return "/volunteer/dashboard"
	default:
		return "/login"
	}
}

// User is the signed-in principal as reported by the backend at login.
type User struct {
	ID         model.ID `json:"id"`
	Username   string   `json:"username,omitempty"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Email      string   `json:"email"`
	Role       Role     `json:"role"`
	UserType   UserType `json:"userType"`
	TotalHours float64  `json:"totalHours"`
}

// Portal maps role and userType to a dashboard. An explicit userType wins;
// otherwise admin and super_admin roles land on the admin portal and
// volunteer on the volunteer portal. Anything else is PortalNone.
func (u User) Portal() Portal {
	switch UserType(strings.ToLower(string(u.UserType))) {
	case UserTypeAdmin:
		return PortalAdmin
	case UserTypeVolunteer:
		return PortalVolunteer
	}
	switch Role(strings.ToLower(string(u.Role))) {
	case RoleAdmin, RoleSuperAdmin:
		return PortalAdmin
	case RoleVolunteer:
		return PortalVolunteer
	default:
		return PortalNone
	}
}

// DisplayName joins first and last name, falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Initial is the upper-cased first letter of the first name (or display name).
func (u User) Initial() string {
	for _, r := range u.DisplayName() {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier held in the browser cookie; Token is the
// backend credential and never leaves the server.
type Session struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	User       User      `json:"user"`
	RememberMe bool      `json:"remember_me"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Valid reports whether the session carries everything a protected page needs.
// Sessions failing this check are treated as signed out.
func (s Session) Valid() bool {
	return s.ID != "" && s.Token != "" && s.User.Portal() != PortalNone
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
