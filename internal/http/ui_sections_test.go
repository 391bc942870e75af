package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fstgc/vms-portal/internal/adapters/backendapi"
	"github.com/fstgc/vms-portal/internal/domain/model"
	"github.com/fstgc/vms-portal/internal/service"
)

var errBackendDown = errors.New("dial tcp 10.0.0.7:8080: connection refused")

func sampleEvents() []model.Event {
	return []model.Event{
		{
			EventID:         "3",
			Title:           "Beach Cleanup",
			Description:     "Bring gloves",
			EventDate:       model.Date{Time: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
			Location:        "North Beach",
			Capacity:        40,
			RegisteredCount: 12,
			Duration:        3.5,
		},
	}
}

func sampleAnnouncements() []model.Announcement {
	return []model.Announcement{
		{
			AnnouncementID: "8",
			Title:          "Welcome",
			Content:        strings.Repeat("a", 120),
			Priority:       "HIGH",
			CreatedDate:    model.Date{Time: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		},
	}
}

// assertSingleActive checks that exactly one nav item and one section are marked active.
func assertSingleActive(t *testing.T, body, activeHref string) {
	t.Helper()
	assert.Equal(t, 1, strings.Count(body, `class="nav-item is-active"`), "exactly one active nav item")
	assert.Equal(t, 1, strings.Count(body, `class="content-section active"`), "exactly one active section")
	assert.Equal(t, 1, strings.Count(body, `aria-current="page"`))
	idx := strings.Index(body, `aria-current="page"`)
	require.GreaterOrEqual(t, idx, 0)
	start := strings.LastIndex(body[:idx], "<a ")
	assert.Contains(t, body[start:idx], `href="`+activeHref+`"`)
}

func TestSection_AdminDashboardFullPage(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()

	env.Backend.EXPECT().AdminStatistics(gomock.Any(), adminToken).Return(model.AdminStatistics{
		TotalVolunteers:  1250,
		TotalEvents:      18,
		TotalHours:       340.5,
		ActiveVolunteers: 97,
	}, nil)
	env.Backend.EXPECT().ListEvents(gomock.Any(), adminToken, model.UpcomingEvents(5)).Return(sampleEvents(), nil)

	rr := env.do(reqOpts{Path: "/admin/dashboard", Session: id})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "<title>Admin Dashboard - Volunteer Management System</title>")
	assert.Contains(t, body, `<h1 id="page-title" class="page-title">Admin Dashboard</h1>`)
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, `id="user-avatar" class="user-avatar" title="ada@example.org">A</span>`)
	assert.Contains(t, body, `<h3 id="total-volunteers">1,250</h3>`)
	assert.Contains(t, body, `<h3 id="total-hours">340.5</h3>`)
	assert.Contains(t, body, "✅ System initialized successfully")
	assert.Contains(t, body, "Beach Cleanup")
	assert.Contains(t, body, "📅 Jun 1, 2025")
	assertSingleActive(t, body, "/admin/dashboard")
}

func TestSection_FullRenderSupersedesPanelRefresh(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()
	ctx := context.Background()
	env.Backend.EXPECT().AdminStatistics(gomock.Any(), adminToken).Return(model.AdminStatistics{}, nil)
	env.Backend.EXPECT().ListEvents(gomock.Any(), adminToken, gomock.Any()).Return(nil, nil)

	stats := env.Generations.Begin(ctx, id, service.ContainerID(service.PanelStats))
	upcoming := env.Generations.Begin(ctx, id, service.ContainerID(service.PanelUpcomingEvents))
	volunteers := env.Generations.Begin(ctx, id, service.ContainerID(service.PanelVolunteers))

	rr := env.do(reqOpts{Path: "/admin/dashboard", Session: id, HTMX: true})
	require.Equal(t, http.StatusOK, rr.Code)

	assert.True(t, stats.Superseded(ctx), "a pending stats refresh must not overwrite the new section")
	assert.True(t, upcoming.Superseded(ctx))
	assert.False(t, volunteers.Superseded(ctx), "panels of other sections are untouched")
}

func TestSection_StatisticsFailureDoesNotBlockSiblings(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()

	env.Backend.EXPECT().AdminStatistics(gomock.Any(), adminToken).Return(model.AdminStatistics{}, errBackendDown)
	env.Backend.EXPECT().ListEvents(gomock.Any(), adminToken, gomock.Any()).Return(nil, nil)

	rr := env.do(reqOpts{Path: "/admin/dashboard", Session: id})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, body, `<h3 id="total-volunteers">0</h3>`)
	assert.Contains(t, body, `<h3 id="active-volunteers">0</h3>`)
	assert.Contains(t, body, "✅ System initialized successfully")
	assert.Contains(t, body, "No upcoming events")
	assert.NotContains(t, body, "Failed to load events")
}

func TestSection_PartialSwap(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()
	env.Backend.EXPECT().ListEvents(gomock.Any(), adminToken, model.EventFilter{}).Return(sampleEvents(), nil)

	rr := env.do(reqOpts{Path: "/admin/events", Session: id, HTMX: true})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.NotContains(t, body, `class="sidebar"`)
	assert.True(t, strings.HasPrefix(body, "<title>Manage Events - Volunteer Management System</title>"))
	assert.Contains(t, body, `<h1 id="page-title" class="page-title" hx-swap-oob="outerHTML">Manage Events</h1>`)
	assert.Contains(t, body, `<div hx-swap-oob="innerHTML:#sidebar-nav">`)
	assert.Contains(t, body, "👥 12/40")
	assert.Contains(t, body, "📍 North Beach")
	assertSingleActive(t, body, "/admin/events")

	assert.Contains(t, rr.Header().Values("Vary"), "Hx-Request")
	var trigger map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rr.Header().Get("Hx-Trigger")), &trigger))
	assert.Equal(t, "events", trigger["nav:activate"]["section"])
	assert.Equal(t, "admin", trigger["nav:activate"]["portal"])
}

func TestSection_HistoryRestoreRendersFullPage(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()
	env.Backend.EXPECT().ListAnnouncements(gomock.Any(), adminToken, model.AnnouncementFilter{}).Return(nil, nil)

	rr := env.do(reqOpts{
		Path:    "/admin/announcements",
		Session: id,
		HTMX:    true,
		Headers: map[string]string{"Hx-History-Restore-Request": "true"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rr.Body.String(), "No announcements found")
}

func TestSection_EveryReselectionReloads(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()
	env.Backend.EXPECT().ListVolunteers(gomock.Any(), adminToken).Return(nil, nil).Times(2)

	first := env.do(reqOpts{Path: "/admin/volunteers", Session: id, HTMX: true})
	second := env.do(reqOpts{Path: "/admin/volunteers", Session: id, HTMX: true})
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String(), "unchanged data renders identical HTML")
}

func TestSection_EmptyVersusFailed(t *testing.T) {
	yes := true
	tests := []struct {
		name    string
		items   []model.Volunteer
		err     error
		want    []string
		notWant []string
	}{
		{
			name:    "empty",
			want:    []string{`<td colspan="7" class="no-data">No volunteers found</td>`},
			notWant: []string{"Failed to load volunteers"},
		},
		{
			name:    "failed",
			err:     &backendapi.APIError{Status: http.StatusInternalServerError, Message: "boom"},
			want:    []string{`<td colspan="7" class="error">Failed to load volunteers</td>`},
			notWant: []string{"No volunteers found", "boom"},
		},
		{
			name: "ready",
			items: []model.Volunteer{
				{VolunteerID: "5", FirstName: "Alan", LastName: "Turing", Email: "alan@example.org", IsActive: &yes},
				{VolunteerID: "6", FirstName: "Joan", LastName: "Clarke", Phone: "555-0100", TotalHours: 4},
			},
			want: []string{
				"Alan Turing",
				"<td>N/A</td>",
				"<td>555-0100</td>",
				`<span class="status-badge active">Active</span>`,
				`<span class="status-badge inactive">Inactive</span>`,
			},
			notWant: []string{"No volunteers found", "Failed to load volunteers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			id := env.seedAdmin()
			env.Backend.EXPECT().ListVolunteers(gomock.Any(), adminToken).Return(tt.items, tt.err)

			rr := env.do(reqOpts{Path: "/admin/volunteers", Session: id, HTMX: true})
			require.Equal(t, http.StatusOK, rr.Code)
			for _, s := range tt.want {
				assert.Contains(t, rr.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestSection_AnnouncementsRenderMarkdownSafely(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()
	env.Backend.EXPECT().ListAnnouncements(gomock.Any(), adminToken, gomock.Any()).Return([]model.Announcement{
		{
			AnnouncementID: "1",
			Title:          "Schedule",
			Content:        "**Bring water** <script>alert(1)</script>",
			Priority:       "urgent",
			CreatedDate:    model.Date{Time: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		},
	}, nil)

	rr := env.do(reqOpts{Path: "/admin/announcements", Session: id})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<strong>Bring water</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "Priority: urgent")
	assert.Contains(t, body, "badge-danger")
	assert.Contains(t, body, "Posted: Jan 5, 2025")
}

func TestSection_ComingSoonRunsNoLoaders(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin()
	volunteer := env.seedVolunteer()

	for _, tc := range []struct{ session, path, title string }{
		{admin, "/admin/attendance", "Attendance Management"},
		{admin, "/admin/awards", "Awards Management"},
		{admin, "/admin/reports", "Reports &amp; Analytics"},
		{volunteer, "/volunteer/timesheet", "Timesheet"},
		{volunteer, "/volunteer/awards", "Awards"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rr := env.do(reqOpts{Path: tc.path, Session: tc.session})
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), "This feature is coming soon.")
			assert.Contains(t, rr.Body.String(), `<h1 id="page-title" class="page-title">`+tc.title+`</h1>`)
			assertSingleActive(t, rr.Body.String(), tc.path)
		})
	}
}

func TestSection_UnknownSectionIs404(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin()
	volunteer := env.seedVolunteer()

	rr := env.do(reqOpts{Path: "/admin/timesheet", Session: admin})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "404")
	assert.Contains(t, rr.Body.String(), `href="/admin/dashboard"`)

	rr = env.do(reqOpts{Path: "/volunteer/volunteers", Session: volunteer})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSection_VolunteerDashboard(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedVolunteer()

	env.Backend.EXPECT().VolunteerStatistics(gomock.Any(), volunteerToken, model.ID("42")).
		Return(model.VolunteerStatistics{EventsAttended: 7, AwardsEarned: 2}, nil)
	env.Backend.EXPECT().ListEvents(gomock.Any(), volunteerToken, model.UpcomingEvents(5)).Return(sampleEvents(), nil)
	env.Backend.EXPECT().ListAnnouncements(gomock.Any(), volunteerToken, model.AnnouncementFilter{Limit: 5}).
		Return(sampleAnnouncements(), nil)

	rr := env.do(reqOpts{Path: "/volunteer/dashboard", Session: id})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, body, "<title>Dashboard - Volunteer Management System</title>")
	assert.Contains(t, body, "grace Hopper")
	assert.Contains(t, body, `title="grace@example.org">G</span>`)
	assert.Contains(t, body, `<h3 id="total-hours">12.5</h3>`)
	assert.Contains(t, body, `<h3 id="events-attended">7</h3>`)
	assert.Contains(t, body, `<h3 id="volunteer-rank">#-</h3>`)
	assert.Contains(t, body, "📍 North Beach")
	assert.Contains(t, body, strings.Repeat("a", 100)+"...")
	assert.NotContains(t, body, strings.Repeat("a", 101))
	assertSingleActive(t, body, "/volunteer/dashboard")
}

func TestSection_VolunteerEventsAndProfile(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedVolunteer()
	env.Backend.EXPECT().ListEvents(gomock.Any(), volunteerToken, model.EventFilter{}).Return(sampleEvents(), nil)

	rr := env.do(reqOpts{Path: "/volunteer/events", Session: id, HTMX: true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "⏱️ 3.5 hours")
	assert.NotContains(t, rr.Body.String(), "👥")

	rr = env.do(reqOpts{Path: "/volunteer/profile", Session: id})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="profile-firstname" type="text" value="grace"`)
	assert.Contains(t, rr.Body.String(), `id="profile-lastname" type="text" value="Hopper"`)
	assert.Contains(t, rr.Body.String(), `id="profile-email" type="email" value="grace@example.org"`)
}

func TestSection_PortalRootRedirectsToDashboard(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()

	rr := env.do(reqOpts{Path: "/admin/", Session: id})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/dashboard", rr.Header().Get("Location"))
}

func TestSection_SupersededPartialIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()

	// A second navigation starts while the first is still loading.
	env.Backend.EXPECT().ListEvents(gomock.Any(), adminToken, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ model.EventFilter) ([]model.Event, error) {
			env.Generations.Begin(ctx, id, contentContainer)
			return sampleEvents(), nil
		}).Times(2)

	rr := env.do(reqOpts{Path: "/admin/events", Session: id, HTMX: true})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	// Full page loads always render.
	rr = env.do(reqOpts{Path: "/admin/events", Session: id})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Beach Cleanup")
}

func TestPanel_RefreshFragment(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedAdmin()
	env.Backend.EXPECT().ListEvents(gomock.Any(), adminToken, model.UpcomingEvents(5)).Return(nil, errBackendDown)

	rr := env.do(reqOpts{Path: "/admin/panels/upcoming-events", Session: id, HTMX: true})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<div id="panel-upcoming-events"`)
	assert.Contains(t, body, `<p class="error">Failed to load events</p>`)
	assert.NotContains(t, body, "<html")
	assert.NotContains(t, body, "page-title")
}

func TestPanel_UnknownPanelIs404(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin()
	volunteer := env.seedVolunteer()

	rr := env.do(reqOpts{Path: "/admin/panels/bogus", Session: admin})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(reqOpts{Path: "/volunteer/panels/volunteers", Session: volunteer})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPanel_SupersededRefreshIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedVolunteer()
	env.Backend.EXPECT().VolunteerStatistics(gomock.Any(), volunteerToken, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ model.ID) (model.VolunteerStatistics, error) {
			env.Generations.Begin(ctx, id, "panel-stats")
			return model.VolunteerStatistics{}, nil
		})

	rr := env.do(reqOpts{Path: "/volunteer/panels/stats", Session: id, HTMX: true})
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestContentTemplatesExist(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	for page, name := range ContentTemplateMap() {
		assert.True(t, tr.Has(name), "page %q maps to missing template %q", page, name)
	}
	for _, name := range []string{
		"layout", "content", "sidebar-nav-items", "login-page", "login-form", "error-layout",
		"admin-panel-stats", "admin-panel-recent-activities", "admin-panel-upcoming-events",
		"admin-panel-volunteers", "admin-panel-events", "admin-panel-announcements",
		"volunteer-panel-stats", "volunteer-panel-upcoming-events", "volunteer-panel-announcements",
		"volunteer-panel-events",
	} {
		assert.True(t, tr.Has(name), "missing template %q", name)
	}
}
