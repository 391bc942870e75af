package viewmodel

import (
	"html/template"

	"github.com/fstgc/vms-portal/internal/domain/dashboard"
)

// User represents the signed-in user as shown in the page header.
type User struct {
	Name    string
	Initial string
	Email   string
	Role    string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	Portal          string
	Section         string
	CSRFToken       string
	CSRFField       template.HTML
	IsAuthenticated bool
	User            *User
	Nav             []dashboard.NavState
	Flashes         []string
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}
