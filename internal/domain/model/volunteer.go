package model

import "strings"

// Volunteer is a registered volunteer as listed for administrators.
type Volunteer struct {
	VolunteerID ID      `json:"volunteerId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	TotalHours  float64 `json:"totalHours"`
	IsActive    *bool   `json:"isActive"`
	Status      string  `json:"status,omitempty"`
}

// FullName joins first and last name.
func (v Volunteer) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// Active reports the explicit isActive flag, or falls back to the account status.
func (v Volunteer) Active() bool {
	if v.IsActive != nil {
		return *v.IsActive
	}
	return strings.EqualFold(v.Status, "active")
}
