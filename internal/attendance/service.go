package attendance

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/rafli4514/absensi-magang-sub001/internal/geo"
	"github.com/rafli4514/absensi-magang-sub001/internal/participant"
	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
)

// ParticipantDirectory resolves participants by id. A nil participant with
// a nil error means "not found".
type ParticipantDirectory interface {
	Lookup(ctx context.Context, id string) (*participant.Participant, error)
}

// PolicySource loads the current policy. It must read fresh on every call:
// settings may change between submissions.
type PolicySource interface {
	Load(ctx context.Context) (policy.Config, error)
}

// EventStore persists attendance events and answers the duplicate check.
type EventStore interface {
	HasExisting(ctx context.Context, participantID string, kind Kind, day time.Time) (bool, error)
	Insert(ctx context.Context, evt Event) (Event, error)
}

// Service is the admission pipeline: the single entry point through which
// every attendance event is created. Acceptance implies all gates passed;
// nothing is written before the final step.
type Service struct {
	participants ParticipantDirectory
	policies     PolicySource
	events       EventStore
	now          func() time.Time
}

// NewService wires the pipeline to its collaborators.
func NewService(participants ParticipantDirectory, policies PolicySource, events EventStore) *Service {
	return &Service{
		participants: participants,
		policies:     policies,
		events:       events,
		now:          NowCivil,
	}
}

// Submission is one inbound clock event.
type Submission struct {
	ParticipantID string
	Kind          Kind
	// Timestamp, when set, is trusted verbatim as civil local time.
	Timestamp string
	Latitude  *float64
	Longitude *float64
	ImageURL  string
	QRPayload string
	Notes     string
	RemoteIP  string
}

// Result is an accepted submission: the persisted event plus radius-check
// metadata when a geofence was evaluated.
type Result struct {
	Event    Event
	Distance *float64
	Radius   *float64
}

// Submit runs every gate in order and persists the event only when all of
// them pass. The returned error, when non-nil, is always a *Error.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	res, err := s.submit(ctx, sub)
	if err != nil {
		var aerr *Error
		if !errors.As(err, &aerr) {
			log.Printf("attendance: internal failure for participant %s: %v", sub.ParticipantID, err)
			aerr = errInternal()
		}
		admissionsTotal.WithLabelValues("rejected", aerr.Code).Inc()
		return Result{}, aerr
	}
	admissionsTotal.WithLabelValues("accepted", string(res.Event.Status)).Inc()
	return res, nil
}

func (s *Service) submit(ctx context.Context, sub Submission) (Result, error) {
	if !sub.Kind.Known() {
		return Result{}, errInvalidEventKind(sub.Kind)
	}

	p, err := s.participants.Lookup(ctx, sub.ParticipantID)
	if err != nil {
		return Result{}, err
	}
	if p == nil {
		return Result{}, errParticipantNotFound(sub.ParticipantID)
	}
	if p.Status != participant.StatusActive {
		return Result{}, errParticipantNotActive(sub.ParticipantID)
	}

	cfg, err := s.policies.Load(ctx)
	if err != nil {
		return Result{}, err
	}

	validated := sub.Kind.Validated()

	if validated && cfg.Network.IPWhitelistEnabled {
		if len(cfg.Network.IPWhitelist) == 0 {
			return Result{}, errIPWhitelistNotConfigured()
		}
		if !ipListed(cfg.Network.IPWhitelist, sub.RemoteIP) {
			return Result{}, errIPNotWhitelisted(sub.RemoteIP)
		}
	}

	now := s.now()
	if sub.Timestamp != "" {
		now, err = ParseClientTime(sub.Timestamp)
		if err != nil {
			return Result{}, errInvalidTimestamp(sub.Timestamp)
		}
	}

	status := StatusValid
	var distance *float64
	if validated {
		st, aerr := EvaluateRules(now, sub.Kind, cfg)
		if aerr != nil {
			return Result{}, aerr
		}
		status = st

		if cfg.Location.Required && (sub.Latitude == nil || sub.Longitude == nil) {
			return Result{}, errLocationRequired()
		}
		if cfg.Location.UseRadius && sub.Latitude != nil && sub.Longitude != nil {
			if !cfg.OfficeConfigured() {
				return Result{}, errOfficeNotConfigured()
			}
			d := geo.Distance(*sub.Latitude, *sub.Longitude,
				*cfg.Location.Office.Latitude, *cfg.Location.Office.Longitude)
			distance = &d
			if d > cfg.Location.RadiusMeters {
				return Result{}, errLocationOutOfRange(d, cfg.Location.RadiusMeters)
			}
		}

		exists, err := s.events.HasExisting(ctx, sub.ParticipantID, sub.Kind, now)
		if err != nil {
			return Result{}, err
		}
		if exists {
			return Result{}, errAlreadyRecorded(sub.Kind)
		}
	}

	evt := Event{
		ParticipantID: sub.ParticipantID,
		Kind:          sub.Kind,
		OccurredAt:    now,
		Latitude:      sub.Latitude,
		Longitude:     sub.Longitude,
		ImageURL:      sub.ImageURL,
		QRPayload:     sub.QRPayload,
		Status:        status,
		Notes:         sub.Notes,
		RemoteIP:      sub.RemoteIP,
	}

	created, err := s.events.Insert(ctx, evt)
	if err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return Result{}, errAlreadyRecorded(sub.Kind)
		}
		return Result{}, err
	}

	res := Result{Event: created, Distance: distance}
	if distance != nil {
		radius := cfg.Location.RadiusMeters
		res.Radius = &radius
	}
	return res, nil
}

func ipListed(list []string, ip string) bool {
	for _, entry := range list {
		if entry == ip {
			return true
		}
	}
	return false
}
