// Package registration manages event registrations for zones.
//
// Registrations are the alert fan-out source: when an automation event
// fires for a zone, approved and pending registrations in that zone
// supply the recipient addresses.
package registration

import (
	"strings"
	"time"
)

// Status is a registration's review state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ValidStatus reports whether s is a recognised status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Registration is one event booking in a zone.
type Registration struct {
	ID                 string    `json:"id"`
	EventName          string    `json:"event_name"`
	ZoneID             string    `json:"zone_id"`
	RegistrantName     string    `json:"registrant_name"`
	RegistrantEmail    string    `json:"registrant_email"`
	ContactEmail       string    `json:"contact_email,omitempty"`
	ExpectedAttendance int       `json:"expected_attendance"`
	StartsAt           time.Time `json:"starts_at"`
	EndsAt             time.Time `json:"ends_at"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NotifyEmail returns the address alerts should go to: the contact
// email when provided, otherwise the registrant's own address.
func (r *Registration) NotifyEmail() string {
	if addr := strings.TrimSpace(r.ContactEmail); addr != "" {
		return addr
	}
	return strings.TrimSpace(r.RegistrantEmail)
}

// Validate checks the fields a caller must supply before Create.
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.EventName) == "" {
		return ErrMissingEventName
	}
	if strings.TrimSpace(r.ZoneID) == "" {
		return ErrMissingZone
	}
	if strings.TrimSpace(r.RegistrantEmail) == "" {
		return ErrMissingEmail
	}
	if !r.EndsAt.IsZero() && !r.StartsAt.IsZero() && r.EndsAt.Before(r.StartsAt) {
		return ErrInvalidTimeRange
	}
	return nil
}
