package leave

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, participantID string, status Status) ([]Request, error)
	SetDecision(ctx context.Context, id string, status Status, note, deciderID string, at time.Time) error
}

// MarkerSubmitter records non-validated attendance markers; in production
// this is the admission pipeline.
type MarkerSubmitter interface {
	Submit(ctx context.Context, sub attendance.Submission) (attendance.Result, error)
}

// PolicySource supplies the work-day calendar for marker generation.
type PolicySource interface {
	Load(ctx context.Context) (policy.Config, error)
}

// Service manages leave requests. Approving a request writes one attendance
// marker per covered work day.
type Service struct {
	store    Store
	markers  MarkerSubmitter
	policies PolicySource
	now      func() time.Time
}

// NewService wires the service.
func NewService(store Store, markers MarkerSubmitter, policies PolicySource) *Service {
	return &Service{store: store, markers: markers, policies: policies, now: attendance.NowCivil}
}

// Create validates and files a new pending request.
func (s *Service) Create(ctx context.Context, participantID string, kind Kind, start, end time.Time, reason string) (Request, error) {
	if !kind.Known() {
		return Request{}, fmt.Errorf("unknown leave kind %q", kind)
	}
	if end.Before(start) {
		return Request{}, errors.New("end date is before start date")
	}
	return s.store.Create(ctx, Request{
		ParticipantID: participantID,
		Kind:          kind,
		StartDate:     start,
		EndDate:       end,
		Reason:        reason,
	})
}

// List returns requests visible for the given scope.
func (s *Service) List(ctx context.Context, participantID string, status Status) ([]Request, error) {
	return s.store.List(ctx, participantID, status)
}

// Decide approves or rejects a pending request. On approval, a marker event
// is submitted for every covered work day; non-work days are skipped.
func (s *Service) Decide(ctx context.Context, id string, approve bool, note, deciderID string) (Request, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req == nil {
		return Request{}, ErrNotFound
	}
	if req.Status != StatusPending {
		return Request{}, fmt.Errorf("request %s already %s", id, req.Status)
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	decidedAt := s.now()
	if err := s.store.SetDecision(ctx, id, status, note, deciderID, decidedAt); err != nil {
		return Request{}, err
	}
	req.Status = status
	req.DecisionNote = note
	req.DecidedBy = &deciderID
	req.DecidedAt = &decidedAt

	if approve {
		if err := s.recordMarkers(ctx, *req); err != nil {
			// The decision stands; missing markers are logged, not rolled back.
			log.Printf("leave: marker generation for request %s incomplete: %v", id, err)
		}
	}
	return *req, nil
}

func (s *Service) recordMarkers(ctx context.Context, req Request) error {
	cfg, err := s.policies.Load(ctx)
	if err != nil {
		return err
	}
	var firstErr error
	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
		if !cfg.IsWorkDay(day.Weekday().String()) {
			continue
		}
		_, err := s.markers.Submit(ctx, attendance.Submission{
			ParticipantID: req.ParticipantID,
			Kind:          req.Kind.MarkerKind(),
			Timestamp:     day.Format("2006-01-02"),
			Notes:         req.Reason,
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
