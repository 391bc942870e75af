package model

import (
	"net/url"
	"strconv"
)

// Announcement is a message published to volunteers.
type Announcement struct {
	AnnouncementID ID     `json:"announcementId"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Priority       string `json:"priority"`
	CreatedDate    Date   `json:"createdDate"`

	// Message is the legacy name of Content still emitted by older backends.
	Message string `json:"message,omitempty"`
}

// Body returns the announcement text, falling back to the legacy field.
func (a Announcement) Body() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Message
}

// AnnouncementFilter narrows an announcement listing.
type AnnouncementFilter struct {
	Limit int
}

// Query encodes the filter as backend query parameters.
func (f AnnouncementFilter) Query() url.Values {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}
