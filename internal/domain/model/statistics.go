package model

// AdminStatistics aggregates organisation-wide counters for the admin dashboard.
type AdminStatistics struct {
	TotalVolunteers  int64   `json:"totalVolunteers"`
	TotalEvents      int64   `json:"totalEvents"`
	TotalHours       float64 `json:"totalHours"`
	ActiveVolunteers int64   `json:"activeVolunteers"`
}

// VolunteerStatistics holds a single volunteer's personal counters.
type VolunteerStatistics struct {
	EventsAttended int64 `json:"eventsAttended"`
	AwardsEarned   int64 `json:"awardsEarned"`
	// Rank is nil when the volunteer has not been ranked yet.
	Rank *int64 `json:"rank"`
}

// HasRank reports whether a positive rank is present.
func (s VolunteerStatistics) HasRank() bool {
	return s.Rank != nil && *s.Rank > 0
}
