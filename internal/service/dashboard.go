package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/dashboard"
	"github.com/fstgc/vms-portal/internal/domain/model"
	"github.com/fstgc/vms-portal/internal/observability/metrics"
	"github.com/fstgc/vms-portal/internal/observability/statsd"
	"github.com/fstgc/vms-portal/internal/ports"
)

// PanelID names a loader-backed container. The same id can mean slightly
// different loaders on the two portals (limits, placeholder texts).
type PanelID string

const (
	PanelStats            PanelID = "stats"
	PanelRecentActivities PanelID = "recent-activities"
	PanelUpcomingEvents   PanelID = "upcoming-events"
	PanelVolunteers       PanelID = "volunteers"
	PanelEvents           PanelID = "events"
	PanelAnnouncements    PanelID = "announcements"
)

// ErrUnknownPanel is returned for a panel that does not exist on the portal.
var ErrUnknownPanel = errors.New("unknown panel")

// SystemInitialized is the static admin "recent activities" entry.
const SystemInitialized = "✅ System initialized successfully"

const (
	upcomingLimit     = 5
	announcementLimit = 5
)

// View is everything a dashboard template may need. Loaders fill only the
// fields of the panels they were asked for.
type View struct {
	Portal           domainauth.Portal
	User             domainauth.User
	AdminStats       model.AdminStatistics
	VolunteerStats   model.VolunteerStatistics
	RecentActivities []string
	UpcomingEvents   Panel[model.Event]
	Volunteers       Panel[model.Volunteer]
	Events           Panel[model.Event]
	Announcements    Panel[model.Announcement]
}

// TotalHours is the volunteer's running total as reported at login.
func (v View) TotalHours() float64 { return v.User.TotalHours }

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Backend ports.Backend // Required
	Logger  *slog.Logger  // Optional
	Metrics statsd.Sink   // Optional
}

// DashboardService runs the data loaders behind both dashboards.
type DashboardService struct {
	backend ports.Backend
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	if opts.Backend == nil {
		panic("DashboardService requires a Backend")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Discard
	}
	return &DashboardService{
		backend: opts.Backend,
		logger:  logger.With("component", "dashboard"),
		metrics: sink,
	}
}

// sectionPanels lists the loaders each section runs on (re)selection.
//
//nolint:gochecknoglobals // static read-only lookup table
var sectionPanels = map[domainauth.Portal]map[dashboard.Section][]PanelID{
	domainauth.PortalAdmin: {
		dashboard.SectionDashboard:     {PanelStats, PanelRecentActivities, PanelUpcomingEvents},
		dashboard.SectionVolunteers:    {PanelVolunteers},
		dashboard.SectionEvents:        {PanelEvents},
		dashboard.SectionAnnouncements: {PanelAnnouncements},
	},
	domainauth.PortalVolunteer: {
		dashboard.SectionDashboard: {PanelStats, PanelUpcomingEvents, PanelAnnouncements},
		dashboard.SectionEvents:    {PanelEvents},
	},
}

// PanelsFor returns the loaders behind a section. Sections without data
// (coming soon, profile) return nil.
func PanelsFor(portal domainauth.Portal, section dashboard.Section) []PanelID {
	return sectionPanels[portal][section]
}

// HasPanel reports whether id is a loader of some section on portal.
func HasPanel(portal domainauth.Portal, id PanelID) bool {
	for _, ids := range sectionPanels[portal] {
		for _, p := range ids {
			if p == id {
				return true
			}
		}
	}
	return false
}

// LoadSection runs every loader of section concurrently.
func (s *DashboardService) LoadSection(
	ctx context.Context,
	sess domainauth.Session,
	section dashboard.Section,
) View {
	view, _ := s.Load(ctx, sess, PanelsFor(sess.User.Portal(), section)...)
	return view
}

// Load runs the named loaders concurrently. Each loader isolates its own
// failure into its panel; the only error returned is ErrUnknownPanel.
func (s *DashboardService) Load(ctx context.Context, sess domainauth.Session, ids ...PanelID) (View, error) {
	portal := sess.User.Portal()
	view := View{Portal: portal, User: sess.User}

	loaders := make([]func(context.Context), 0, len(ids))
	for _, id := range ids {
		fn, err := s.loader(portal, id, sess, &view)
		if err != nil {
			return View{Portal: portal, User: sess.User}, err
		}
		loaders = append(loaders, fn)
	}

	var g errgroup.Group
	for _, fn := range loaders {
		g.Go(func() error {
			fn(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return view, nil
}

// loader binds a panel id to the function that fills its View field.
// Distinct ids write distinct fields so loaders can run in parallel.
func (s *DashboardService) loader(
	portal domainauth.Portal,
	id PanelID,
	sess domainauth.Session,
	view *View,
) (func(context.Context), error) {
	if !HasPanel(portal, id) {
		return nil, ErrUnknownPanel
	}
	token := sess.Token

	switch portal {
	case domainauth.PortalAdmin:
		switch id {
		case PanelStats:
			return func(ctx context.Context) {
				t0 := time.Now()
				stats, err := s.backend.AdminStatistics(ctx, token)
				s.observe(portal, id, t0, err, 1)
				if err == nil {
					view.AdminStats = stats
				}
			}, nil
		case PanelRecentActivities:
			return func(context.Context) {
				view.RecentActivities = []string{SystemInitialized}
			}, nil
		case PanelUpcomingEvents:
			return s.eventsLoader(portal, id, token, model.UpcomingEvents(upcomingLimit), &view.UpcomingEvents,
				PanelTexts{Empty: "No upcoming events", Failed: "Failed to load events"}), nil
		case PanelVolunteers:
			return func(ctx context.Context) {
				t0 := time.Now()
				items, err := s.backend.ListVolunteers(ctx, token)
				s.observe(portal, id, t0, err, len(items))
				view.Volunteers = NewPanel(items, err,
					PanelTexts{Empty: "No volunteers found", Failed: "Failed to load volunteers"})
			}, nil
		case PanelEvents:
			return s.eventsLoader(portal, id, token, model.EventFilter{}, &view.Events,
				PanelTexts{Empty: "No events found", Failed: "Failed to load events"}), nil
		case PanelAnnouncements:
			return s.announcementsLoader(portal, id, token, model.AnnouncementFilter{}, &view.Announcements,
				PanelTexts{Empty: "No announcements found", Failed: "Failed to load announcements"}), nil
		}
	case domainauth.PortalVolunteer:
		switch id {
		case PanelStats:
			userID := sess.User.ID
			return func(ctx context.Context) {
				t0 := time.Now()
				stats, err := s.backend.VolunteerStatistics(ctx, token, userID)
				s.observe(portal, id, t0, err, 1)
				if err == nil {
					view.VolunteerStats = stats
				}
			}, nil
		case PanelUpcomingEvents:
			return s.eventsLoader(portal, id, token, model.UpcomingEvents(upcomingLimit), &view.UpcomingEvents,
				PanelTexts{Empty: "No upcoming events", Failed: "Failed to load events"}), nil
		case PanelAnnouncements:
			return s.announcementsLoader(portal, id, token, model.AnnouncementFilter{Limit: announcementLimit},
				&view.Announcements, PanelTexts{Empty: "No announcements", Failed: "Failed to load announcements"}), nil
		case PanelEvents:
			return s.eventsLoader(portal, id, token, model.EventFilter{}, &view.Events,
				PanelTexts{Empty: "No events available", Failed: "Failed to load events"}), nil
		}
	}
	return nil, ErrUnknownPanel
}

func (s *DashboardService) eventsLoader(
	portal domainauth.Portal,
	id PanelID,
	token string,
	filter model.EventFilter,
	dst *Panel[model.Event],
	texts PanelTexts,
) func(context.Context) {
	return func(ctx context.Context) {
		t0 := time.Now()
		items, err := s.backend.ListEvents(ctx, token, filter)
		s.observe(portal, id, t0, err, len(items))
		*dst = NewPanel(items, err, texts)
	}
}

func (s *DashboardService) announcementsLoader(
	portal domainauth.Portal,
	id PanelID,
	token string,
	filter model.AnnouncementFilter,
	dst *Panel[model.Announcement],
	texts PanelTexts,
) func(context.Context) {
	return func(ctx context.Context) {
		t0 := time.Now()
		items, err := s.backend.ListAnnouncements(ctx, token, filter)
		s.observe(portal, id, t0, err, len(items))
		*dst = NewPanel(items, err, texts)
	}
}

// observe logs a failed loader and records its metric.
func (s *DashboardService) observe(portal domainauth.Portal, id PanelID, t0 time.Time, err error, n int) {
	result := metrics.ResultOK
	switch {
	case err != nil:
		result = metrics.ResultError
		s.logger.Error("loader failed",
			"portal", string(portal),
			"loader", string(id),
			"container", ContainerID(id),
			"error", err)
	case n == 0:
		result = metrics.ResultEmpty
	}
	metrics.EmitLoader(s.metrics, metrics.LoaderMetric{
		Portal:   string(portal),
		Loader:   string(id),
		Result:   result,
		Duration: time.Since(t0),
		Err:      err,
	})
}

// ContainerID is the DOM id of the element a panel renders into.
func ContainerID(id PanelID) string {
	return "panel-" + string(id)
}
