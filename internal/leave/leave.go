// Package leave manages leave requests and turns approvals into attendance
// markers.
package leave

import (
	"time"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
)

// Kind is the type of leave being requested.
type Kind string

const (
	KindLeave    Kind = "leave"
	KindSick     Kind = "sick"
	KindVacation Kind = "vacation"
)

// Known reports whether the kind is recognized.
func (k Kind) Known() bool {
	return k == KindLeave || k == KindSick || k == KindVacation
}

// MarkerKind maps the leave kind to its attendance marker event kind.
func (k Kind) MarkerKind() attendance.Kind {
	switch k {
	case KindSick:
		return attendance.KindSick
	case KindVacation:
		return attendance.KindVacation
	default:
		return attendance.KindLeave
	}
}

// Status is a request's review state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is one participant leave request covering a civil date range.
type Request struct {
	ID            string     `json:"id"`
	ParticipantID string     `json:"participant_id"`
	Kind          Kind       `json:"kind"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	Reason        string     `json:"reason"`
	Status        Status     `json:"status"`
	DecisionNote  string     `json:"decision_note,omitempty"`
	DecidedBy     *string    `json:"decided_by,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
