// Package participant manages internship participants.
package participant

import "time"

// Status is a participant's lifecycle state. Only active participants may
// submit attendance events.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCompleted Status = "completed"
)

// Known reports whether the status value is recognized.
func (s Status) Known() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCompleted:
		return true
	}
	return false
}

// Participant is an internship participant. Participants are soft-deleted
// so historical attendance keeps a valid owner.
type Participant struct {
	ID          string     `json:"id"`
	Handle      string     `json:"handle"`
	Name        string     `json:"name"`
	Institution string     `json:"institution,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
