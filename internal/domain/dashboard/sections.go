// Package dashboard describes the fixed section layout of the admin and
// volunteer dashboards. It is pure data: names, titles and ordering.
package dashboard

import "github.com/fstgc/vms-portal/internal/domain/auth"

// Section is a named, mutually exclusive panel of a dashboard page.
type Section string

const (
	SectionDashboard     Section = "dashboard"
	SectionVolunteers    Section = "volunteers"
	SectionEvents        Section = "events"
	SectionAttendance    Section = "attendance"
	SectionAnnouncements Section = "announcements"
	SectionAwards        Section = "awards"
	SectionReports       Section = "reports"
	SectionTimesheet     Section = "timesheet"
	SectionProfile       Section = "profile"
)

// NavItem is one entry of a dashboard's sidebar.
type NavItem struct {
	Section Section
	Label   string
	Icon    string
	Title   string
}

// Layout is the ordered set of sections available on one portal.
type Layout struct {
	Portal auth.Portal
	Items  []NavItem
}

//nolint:gochecknoglobals // static read-only lookup tables
var (
	adminLayout = Layout{
		Portal: auth.PortalAdmin,
		Items: []NavItem{
			{Section: SectionDashboard, Label: "Dashboard", Icon: "📊", Title: "Admin Dashboard"},
			{Section: SectionVolunteers, Label: "Volunteers", Icon: "👥", Title: "Manage Volunteers"},
			{Section: SectionEvents, Label: "Events", Icon: "📅", Title: "Manage Events"},
			{Section: SectionAttendance, Label: "Attendance", Icon: "✅", Title: "Attendance Management"},
			{Section: SectionAnnouncements, Label: "Announcements", Icon: "📢", Title: "Manage Announcements"},
			{Section: SectionAwards, Label: "Awards", Icon: "🏆", Title: "Awards Management"},
			{Section: SectionReports, Label: "Reports", Icon: "📈", Title: "Reports & Analytics"},
		},
	}

	volunteerLayout = Layout{
		Portal: auth.PortalVolunteer,
		Items: []NavItem{
			{Section: SectionDashboard, Label: "Dashboard", Icon: "🏠", Title: "Dashboard"},
			{Section: SectionEvents, Label: "Events", Icon: "📅", Title: "Events"},
			{Section: SectionTimesheet, Label: "Timesheet", Icon: "⏱️", Title: "Timesheet"},
			{Section: SectionAwards, Label: "Awards", Icon: "🏆", Title: "Awards"},
			{Section: SectionProfile, Label: "Profile", Icon: "👤", Title: "Profile"},
		},
	}
)

// LayoutFor returns the section layout of a portal. PortalNone has no sections.
func LayoutFor(p auth.Portal) Layout {
	switch p {
	case auth.PortalAdmin:
		return adminLayout
	case auth.PortalVolunteer:
		return volunteerLayout
	default:
		return Layout{}
	}
}

// Lookup resolves a section name on this layout.
func (l Layout) Lookup(name string) (NavItem, bool) {
	for _, item := range l.Items {
		if string(item.Section) == name {
			return item, true
		}
	}
	return NavItem{}, false
}

// Title returns the page title for a section, or "" when the section is unknown.
func (l Layout) Title(s Section) string {
	item, ok := l.Lookup(string(s))
	if !ok {
		return ""
	}
	return item.Title
}

// Path returns the URL of a section on this layout.
func (l Layout) Path(s Section) string {
	return "/" + string(l.Portal) + "/" + string(s)
}

// Nav renders the sidebar state with exactly one item marked active.
func (l Layout) Nav(active Section) []NavState {
	out := make([]NavState, 0, len(l.Items))
	for _, item := range l.Items {
		out = append(out, NavState{
			NavItem: item,
			Href:    l.Path(item.Section),
			Active:  item.Section == active,
		})
	}
	return out
}

// NavState is a sidebar item with its link and active marker.
type NavState struct {
	NavItem
	Href   string
	Active bool
}
