package model

import (
	"net/url"
	"strconv"
	"strings"
)

// EventStatusUpcoming filters events that have not started yet.
const EventStatusUpcoming = "upcoming"

// Event is a volunteering event as served by the backend. The portal only ever
// holds a transient copy for rendering.
type Event struct {
	EventID         ID      `json:"eventId"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	EventDate       Date    `json:"eventDate"`
	Location        string  `json:"location"`
	Capacity        int     `json:"capacity"`
	RegisteredCount int     `json:"registeredCount"`
	Duration        float64 `json:"duration"`
	EventType       string  `json:"eventType,omitempty"`
	Status          string  `json:"status,omitempty"`
}

// EventFilter narrows an event listing. Zero values are omitted from the query.
type EventFilter struct {
	Status string
	Limit  int
}

// Query encodes the filter as backend query parameters.
func (f EventFilter) Query() url.Values {
	q := url.Values{}
	if s := strings.TrimSpace(f.Status); s != "" {
		q.Set("status", s)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// UpcomingEvents is the filter used by both dashboards' upcoming-events panel.
func UpcomingEvents(limit int) EventFilter {
	return EventFilter{Status: EventStatusUpcoming, Limit: limit}
}
