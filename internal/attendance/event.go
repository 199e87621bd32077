package attendance

import "time"

// Kind is the type of a clock action.
type Kind string

const (
	KindCheckIn  Kind = "CHECK_IN"
	KindCheckOut Kind = "CHECK_OUT"
	KindLeave    Kind = "LEAVE"
	KindSick     Kind = "SICK"
	KindVacation Kind = "VACATION"
)

// Known reports whether the kind is one the system records.
func (k Kind) Known() bool {
	switch k {
	case KindCheckIn, KindCheckOut, KindLeave, KindSick, KindVacation:
		return true
	}
	return false
}

// Validated reports whether the kind goes through the full rule, location,
// and duplicate gates. Leave, sick, and vacation markers do not.
func (k Kind) Validated() bool {
	return k == KindCheckIn || k == KindCheckOut
}

// Status is the computed result of a validated clock event.
type Status string

const (
	StatusValid   Status = "VALID"
	StatusLate    Status = "LATE"
	StatusInvalid Status = "INVALID"
)

// Event is one recorded clock action. OccurredAt is a civil local time
// (the fixed UTC+7 wall clock) stored without a zone; weekday and
// time-of-day extraction need no further timezone math.
type Event struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	Kind          Kind      `json:"kind"`
	OccurredAt    time.Time `json:"occurred_at"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	QRPayload     string    `json:"qr_payload,omitempty"`
	Status        Status    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	RemoteIP      string    `json:"remote_ip,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
