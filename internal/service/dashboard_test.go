package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/dashboard"
	"github.com/fstgc/vms-portal/internal/domain/model"
	"github.com/fstgc/vms-portal/internal/mocks"
	"github.com/fstgc/vms-portal/internal/testutil"
)

func adminSession() domainauth.Session {
	return testutil.NewSession("a1", testutil.AdminUser(), time.Now(), time.Hour)
}

func volunteerSession() domainauth.Session {
	return testutil.NewSession("v1", testutil.VolunteerUser(), time.Now(), time.Hour)
}

func newDashboard(t *testing.T) (*DashboardService, *mocks.MockBackend) {
	t.Helper()
	backend := mocks.NewMockBackend(gomock.NewController(t))
	return NewDashboardService(DashboardServiceOptions{Backend: backend}), backend
}

func TestNewPanel(t *testing.T) {
	texts := PanelTexts{Empty: "none", Failed: "oops"}

	p := NewPanel([]int{1, 2}, nil, texts)
	assert.True(t, p.Ready())
	assert.Equal(t, []int{1, 2}, p.Items)
	assert.Empty(t, p.Message)

	p = NewPanel([]int{}, nil, texts)
	assert.True(t, p.Empty())
	assert.Equal(t, "none", p.Message)

	p = NewPanel([]int{1}, errors.New("x"), texts)
	assert.True(t, p.Failed())
	assert.Nil(t, p.Items)
	assert.Equal(t, "oops", p.Message)

	assert.False(t, Panel[int]{}.Loaded())
}

func TestPanelsFor(t *testing.T) {
	assert.Equal(t, []PanelID{PanelStats, PanelRecentActivities, PanelUpcomingEvents},
		PanelsFor(domainauth.PortalAdmin, dashboard.SectionDashboard))
	assert.Equal(t, []PanelID{PanelStats, PanelUpcomingEvents, PanelAnnouncements},
		PanelsFor(domainauth.PortalVolunteer, dashboard.SectionDashboard))
	assert.Nil(t, PanelsFor(domainauth.PortalAdmin, dashboard.SectionReports))
	assert.Nil(t, PanelsFor(domainauth.PortalVolunteer, dashboard.SectionProfile))

	assert.True(t, HasPanel(domainauth.PortalAdmin, PanelVolunteers))
	assert.False(t, HasPanel(domainauth.PortalVolunteer, PanelVolunteers))
	assert.False(t, HasPanel(domainauth.PortalNone, PanelEvents))
}

func TestLoadSection_AdminDashboardStatsFailureIsolated(t *testing.T) {
	svc, backend := newDashboard(t)
	sess := adminSession()

	backend.EXPECT().AdminStatistics(gomock.Any(), sess.Token).
		Return(model.AdminStatistics{}, errors.New("network error"))
	backend.EXPECT().ListEvents(gomock.Any(), sess.Token, model.UpcomingEvents(5)).
		Return([]model.Event{}, nil)

	view := svc.LoadSection(context.Background(), sess, dashboard.SectionDashboard)

	assert.Equal(t, model.AdminStatistics{}, view.AdminStats)
	assert.Equal(t, []string{SystemInitialized}, view.RecentActivities)
	assert.True(t, view.UpcomingEvents.Empty())
	assert.Equal(t, "No upcoming events", view.UpcomingEvents.Message)
}

func TestLoadSection_AdminLists(t *testing.T) {
	svc, backend := newDashboard(t)
	sess := adminSession()
	ctx := context.Background()

	backend.EXPECT().ListVolunteers(gomock.Any(), sess.Token).Return(nil, errors.New("boom"))
	view := svc.LoadSection(ctx, sess, dashboard.SectionVolunteers)
	assert.True(t, view.Volunteers.Failed())
	assert.Equal(t, "Failed to load volunteers", view.Volunteers.Message)
	assert.False(t, view.Events.Loaded())

	backend.EXPECT().ListEvents(gomock.Any(), sess.Token, model.EventFilter{}).Return(nil, nil)
	view = svc.LoadSection(ctx, sess, dashboard.SectionEvents)
	assert.Equal(t, "No events found", view.Events.Message)

	backend.EXPECT().ListAnnouncements(gomock.Any(), sess.Token, model.AnnouncementFilter{}).
		Return([]model.Announcement{{Title: "Hello"}}, nil)
	view = svc.LoadSection(ctx, sess, dashboard.SectionAnnouncements)
	require.True(t, view.Announcements.Ready())
	assert.Equal(t, "Hello", view.Announcements.Items[0].Title)

	view = svc.LoadSection(ctx, sess, dashboard.SectionAwards)
	assert.False(t, view.Announcements.Loaded())
}

func TestLoadSection_VolunteerDashboard(t *testing.T) {
	svc, backend := newDashboard(t)
	sess := volunteerSession()
	rank := int64(3)

	backend.EXPECT().VolunteerStatistics(gomock.Any(), sess.Token, model.ID("42")).
		Return(model.VolunteerStatistics{EventsAttended: 4, Rank: &rank}, nil)
	backend.EXPECT().ListEvents(gomock.Any(), sess.Token, model.UpcomingEvents(5)).
		Return(nil, errors.New("down"))
	backend.EXPECT().ListAnnouncements(gomock.Any(), sess.Token, model.AnnouncementFilter{Limit: 5}).
		Return([]model.Announcement{}, nil)

	view := svc.LoadSection(context.Background(), sess, dashboard.SectionDashboard)

	assert.Equal(t, int64(4), view.VolunteerStats.EventsAttended)
	assert.InDelta(t, 12.5, view.TotalHours(), 0.001)
	assert.Equal(t, "Failed to load events", view.UpcomingEvents.Message)
	assert.Equal(t, "No announcements", view.Announcements.Message)
	assert.Equal(t, domainauth.PortalVolunteer, view.Portal)
}

func TestLoadSection_VolunteerEvents(t *testing.T) {
	svc, backend := newDashboard(t)
	sess := volunteerSession()
	backend.EXPECT().ListEvents(gomock.Any(), sess.Token, model.EventFilter{}).Return([]model.Event{}, nil)

	view := svc.LoadSection(context.Background(), sess, dashboard.SectionEvents)
	assert.Equal(t, "No events available", view.Events.Message)
}

func TestLoad_UnknownPanel(t *testing.T) {
	svc, _ := newDashboard(t)
	_, err := svc.Load(context.Background(), volunteerSession(), PanelVolunteers)
	assert.ErrorIs(t, err, ErrUnknownPanel)

	_, err = svc.Load(context.Background(), adminSession(), PanelID("nope"))
	assert.ErrorIs(t, err, ErrUnknownPanel)
}

func TestLoad_RunsConcurrently(t *testing.T) {
	svc, backend := newDashboard(t)
	sess := adminSession()

	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	track := func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
	}

	backend.EXPECT().AdminStatistics(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (model.AdminStatistics, error) {
			track()
			return model.AdminStatistics{TotalVolunteers: 1}, nil
		})
	backend.EXPECT().ListEvents(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, model.EventFilter) ([]model.Event, error) {
			track()
			return []model.Event{{Title: "E"}}, nil
		})

	done := make(chan View, 1)
	go func() {
		done <- svc.LoadSection(context.Background(), sess, dashboard.SectionDashboard)
	}()

	require.Eventually(t, func() bool { return inFlight.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(release)

	view := <-done
	assert.Equal(t, int32(2), peak.Load())
	assert.Equal(t, int64(1), view.AdminStats.TotalVolunteers)
	assert.True(t, view.UpcomingEvents.Ready())
}

func TestLoad_Idempotent(t *testing.T) {
	svc, backend := newDashboard(t)
	sess := adminSession()
	events := []model.Event{{EventID: "1", Title: "Cleanup"}}
	backend.EXPECT().ListEvents(gomock.Any(), gomock.Any(), gomock.Any()).Return(events, nil).Times(2)

	first, err := svc.Load(context.Background(), sess, PanelEvents)
	require.NoError(t, err)
	second, err := svc.Load(context.Background(), sess, PanelEvents)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
