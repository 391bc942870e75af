package httpx

import (
	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/dashboard"
)

// SessionCookieName holds the opaque server-side session id.
const SessionCookieName = "session_id"

// Page identifiers outside the dashboards.
const (
	PageLogin    = "login"
	PageNotFound = "not-found"
)

// Public routes the handlers redirect between.
const (
	loginPath  = "/login"
	logoutPath = "/logout"
)

// AppName is appended to every document title.
const AppName = "Volunteer Management System"

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// contentContainer is the DOM id that section swaps target. Its generation
// counter is shared by every section of a portal.
const contentContainer = "content"

// comingSoonContent renders sections without any data behind them yet.
const comingSoonContent = "coming-soon-content"

// Content templates are defined once and reused to avoid per-call allocations.
//
//nolint:gochecknoglobals // static read-only lookup for templates; avoids per-call allocations
var contentTemplates = map[string]string{
	PageLogin: "login-content",

	pageID(domainauth.PortalAdmin, dashboard.SectionDashboard):     "admin-dashboard-content",
	pageID(domainauth.PortalAdmin, dashboard.SectionVolunteers):    "admin-volunteers-content",
	pageID(domainauth.PortalAdmin, dashboard.SectionEvents):        "admin-events-content",
	pageID(domainauth.PortalAdmin, dashboard.SectionAttendance):    comingSoonContent,
	pageID(domainauth.PortalAdmin, dashboard.SectionAnnouncements): "admin-announcements-content",
	pageID(domainauth.PortalAdmin, dashboard.SectionAwards):        comingSoonContent,
	pageID(domainauth.PortalAdmin, dashboard.SectionReports):       comingSoonContent,

	pageID(domainauth.PortalVolunteer, dashboard.SectionDashboard): "volunteer-dashboard-content",
	pageID(domainauth.PortalVolunteer, dashboard.SectionEvents):    "volunteer-events-content",
	pageID(domainauth.PortalVolunteer, dashboard.SectionTimesheet): comingSoonContent,
	pageID(domainauth.PortalVolunteer, dashboard.SectionAwards):    comingSoonContent,
	pageID(domainauth.PortalVolunteer, dashboard.SectionProfile):   "volunteer-profile-content",
}

// pageID is the CurrentPage value of a dashboard section, e.g. "admin/events".
func pageID(portal domainauth.Portal, section dashboard.Section) string {
	return string(portal) + "/" + string(section)
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
// This is the single source of truth for page-to-template mapping.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Unknown pages fall back to the coming-soon placeholder.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return comingSoonContent
}

// panelTemplateFor names the fragment template of one loader container,
// e.g. "admin-panel-stats".
func panelTemplateFor(portal domainauth.Portal, panel string) string {
	return string(portal) + "-panel-" + panel
}
