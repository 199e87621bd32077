package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rafli4514/absensi-magang-sub001/internal/participant"
	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
)

type fakeDirectory struct {
	participants map[string]*participant.Participant
}

func (f *fakeDirectory) Lookup(_ context.Context, id string) (*participant.Participant, error) {
	return f.participants[id], nil
}

type fakePolicies struct {
	cfg   policy.Config
	loads int
}

func (f *fakePolicies) Load(context.Context) (policy.Config, error) {
	f.loads++
	return f.cfg, nil
}

type fakeEvents struct {
	stored    []Event
	insertErr error
}

func (f *fakeEvents) HasExisting(_ context.Context, participantID string, kind Kind, day time.Time) (bool, error) {
	start, end := DayBounds(day)
	for _, evt := range f.stored {
		if evt.ParticipantID == participantID && evt.Kind == kind &&
			!evt.OccurredAt.Before(start) && !evt.OccurredAt.After(end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEvents) Insert(_ context.Context, evt Event) (Event, error) {
	if f.insertErr != nil {
		return Event{}, f.insertErr
	}
	evt.ID = "evt-1"
	evt.CreatedAt = time.Now()
	f.stored = append(f.stored, evt)
	return evt, nil
}

func newTestService(cfg policy.Config, events *fakeEvents) (*Service, *fakePolicies) {
	dir := &fakeDirectory{participants: map[string]*participant.Participant{
		"p1":       {ID: "p1", Handle: "intern1", Status: participant.StatusActive},
		"inactive": {ID: "inactive", Handle: "intern2", Status: participant.StatusInactive},
	}}
	policies := &fakePolicies{cfg: cfg}
	svc := NewService(dir, policies, events)
	svc.now = func() time.Time { return civil("2025-06-02", "08:05") }
	return svc, policies
}

func rejectionCode(t *testing.T, err error) string {
	t.Helper()
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	return aerr.Code
}

func TestSubmitAccepted(t *testing.T) {
	events := &fakeEvents{}
	svc, policies := newTestService(policy.Defaults(), events)

	res, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn})
	if err != nil {
		t.Fatal(err)
	}
	if res.Event.Status != StatusValid {
		t.Errorf("status: got %s, want VALID", res.Event.Status)
	}
	if res.Event.ID == "" {
		t.Error("created event should carry an id")
	}
	if res.Distance != nil {
		t.Error("no radius check configured; no distance expected")
	}
	if policies.loads != 1 {
		t.Errorf("policy should be loaded exactly once per submission, got %d", policies.loads)
	}
}

func TestSubmitParticipantGates(t *testing.T) {
	svc, _ := newTestService(policy.Defaults(), &fakeEvents{})

	_, err := svc.Submit(context.Background(), Submission{ParticipantID: "ghost", Kind: KindCheckIn})
	if code := rejectionCode(t, err); code != "PARTICIPANT_NOT_FOUND" {
		t.Errorf("got %s", code)
	}

	// Inactive participants are rejected before any policy evaluation,
	// even on a weekend with a midnight timestamp.
	_, err = svc.Submit(context.Background(), Submission{
		ParticipantID: "inactive",
		Kind:          KindCheckIn,
		Timestamp:     "2025-06-08T03:00:00",
	})
	if code := rejectionCode(t, err); code != "PARTICIPANT_NOT_ACTIVE" {
		t.Errorf("got %s", code)
	}
}

func TestSubmitUnknownKind(t *testing.T) {
	svc, _ := newTestService(policy.Defaults(), &fakeEvents{})
	_, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: "BREAK"})
	if code := rejectionCode(t, err); code != "INVALID_EVENT_KIND" {
		t.Errorf("got %s", code)
	}
}

func TestSubmitInvalidTimestamp(t *testing.T) {
	svc, _ := newTestService(policy.Defaults(), &fakeEvents{})
	_, err := svc.Submit(context.Background(), Submission{
		ParticipantID: "p1", Kind: KindCheckIn, Timestamp: "not-a-time",
	})
	if code := rejectionCode(t, err); code != "INVALID_TIMESTAMP" {
		t.Errorf("got %s", code)
	}
}

func TestSubmitClientTimestampTrusted(t *testing.T) {
	events := &fakeEvents{}
	svc, _ := newTestService(policy.Defaults(), events)

	res, err := svc.Submit(context.Background(), Submission{
		ParticipantID: "p1", Kind: KindCheckIn, Timestamp: "2025-06-03T08:20:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Event.Status != StatusLate {
		t.Errorf("08:20 is past the 15-minute threshold: got %s", res.Event.Status)
	}
	if res.Event.OccurredAt.Day() != 3 {
		t.Errorf("client timestamp should be stored verbatim, got %v", res.Event.OccurredAt)
	}
}

func TestSubmitIPWhitelist(t *testing.T) {
	cfg := policy.Defaults()
	cfg.Network.IPWhitelistEnabled = true

	svc, _ := newTestService(cfg, &fakeEvents{})
	_, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn, RemoteIP: "10.0.0.9"})
	if code := rejectionCode(t, err); code != "IP_WHITELIST_NOT_CONFIGURED" {
		t.Errorf("empty whitelist: got %s", code)
	}

	cfg.Network.IPWhitelist = []string{"10.0.0.1"}
	svc, _ = newTestService(cfg, &fakeEvents{})
	_, err = svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn, RemoteIP: "10.0.0.9"})
	if code := rejectionCode(t, err); code != "IP_NOT_WHITELISTED" {
		t.Errorf("unlisted address: got %s", code)
	}

	_, err = svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn, RemoteIP: "10.0.0.1"})
	if err != nil {
		t.Errorf("listed address should pass: %v", err)
	}
}

func TestSubmitLocationRequired(t *testing.T) {
	cfg := policy.Defaults()
	cfg.Location.Required = true

	svc, _ := newTestService(cfg, &fakeEvents{})
	_, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn})
	if code := rejectionCode(t, err); code != "LOCATION_REQUIRED" {
		t.Errorf("got %s", code)
	}
}

func TestSubmitRadiusCheck(t *testing.T) {
	officeLat, officeLon := 5.5454, 95.3176
	cfg := policy.Defaults()
	cfg.Location.Required = true
	cfg.Location.UseRadius = true
	cfg.Location.RadiusMeters = 100
	cfg.Location.Office.Latitude = &officeLat
	cfg.Location.Office.Longitude = &officeLon

	// ~500 m north of the office.
	farLat, farLon := 5.5499, 95.3176
	svc, _ := newTestService(cfg, &fakeEvents{})
	_, err := svc.Submit(context.Background(), Submission{
		ParticipantID: "p1", Kind: KindCheckIn, Latitude: &farLat, Longitude: &farLon,
	})
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Code != "LOCATION_OUT_OF_RANGE" {
		t.Fatalf("expected LOCATION_OUT_OF_RANGE, got %v", err)
	}
	d, ok := aerr.Meta["distance"].(float64)
	if !ok || d < 400 || d > 600 {
		t.Errorf("computed distance should be reported, got %v", aerr.Meta)
	}

	// Inside the radius: accepted, with distance metadata.
	nearLat, nearLon := 5.5458, 95.3176
	res, err := svc.Submit(context.Background(), Submission{
		ParticipantID: "p1", Kind: KindCheckIn, Latitude: &nearLat, Longitude: &nearLon,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Distance == nil || res.Radius == nil {
		t.Fatal("radius-checked acceptance should carry distance and radius")
	}
	if *res.Distance > 100 || *res.Radius != 100 {
		t.Errorf("meta: distance %v radius %v", *res.Distance, *res.Radius)
	}
}

func TestSubmitOfficeNotConfigured(t *testing.T) {
	cfg := policy.Defaults()
	cfg.Location.UseRadius = true
	lat, lon := 5.5454, 95.3176

	svc, _ := newTestService(cfg, &fakeEvents{})
	_, err := svc.Submit(context.Background(), Submission{
		ParticipantID: "p1", Kind: KindCheckIn, Latitude: &lat, Longitude: &lon,
	})
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Code != "OFFICE_LOCATION_NOT_CONFIGURED" {
		t.Fatalf("expected OFFICE_LOCATION_NOT_CONFIGURED, got %v", err)
	}
	if aerr.HTTPStatus != 500 {
		t.Errorf("misconfiguration is an admin-facing 500, got %d", aerr.HTTPStatus)
	}
}

func TestSubmitDuplicateGuard(t *testing.T) {
	events := &fakeEvents{}
	svc, _ := newTestService(policy.Defaults(), events)

	if _, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn})
	if code := rejectionCode(t, err); code != "ALREADY_CHECKED_IN" {
		t.Fatalf("second check-in same day: got %s", code)
	}

	// A check-out on the same day is a separate slot.
	if _, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckOut}); err != nil {
		t.Fatalf("check-out should not conflict with check-in: %v", err)
	}
	_, err = svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckOut})
	if code := rejectionCode(t, err); code != "ALREADY_CHECKED_OUT" {
		t.Fatalf("second check-out same day: got %s", code)
	}

	// Deleting the check-in frees the slot.
	kept := events.stored[:0]
	for _, evt := range events.stored {
		if evt.Kind != KindCheckIn {
			kept = append(kept, evt)
		}
	}
	events.stored = kept
	if _, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn}); err != nil {
		t.Fatalf("slot should be free after deletion: %v", err)
	}
}

func TestSubmitStorageConflictBackstop(t *testing.T) {
	events := &fakeEvents{insertErr: ErrDuplicateEvent}
	svc, _ := newTestService(policy.Defaults(), events)

	_, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn})
	if code := rejectionCode(t, err); code != "ALREADY_CHECKED_IN" {
		t.Fatalf("unique violation should surface as the conflict code, got %s", code)
	}
}

func TestSubmitMarkersSkipValidation(t *testing.T) {
	cfg := policy.Defaults()
	cfg.Location.Required = true
	cfg.Network.IPWhitelistEnabled = true // empty list would reject validated kinds

	events := &fakeEvents{}
	svc, _ := newTestService(cfg, events)

	// A sick marker on a Sunday, no location, no whitelisted address.
	res, err := svc.Submit(context.Background(), Submission{
		ParticipantID: "p1", Kind: KindSick, Timestamp: "2025-06-08T00:00:00",
	})
	if err != nil {
		t.Fatalf("markers are non-validated: %v", err)
	}
	if res.Event.Status != StatusValid {
		t.Errorf("marker status: got %s", res.Event.Status)
	}

	// Markers do not occupy a per-day slot.
	if _, err := svc.Submit(context.Background(), Submission{
		ParticipantID: "p1", Kind: KindSick, Timestamp: "2025-06-08T00:00:00",
	}); err != nil {
		t.Fatalf("second marker same day should be allowed: %v", err)
	}
}

func TestSubmitInternalFailureIsGeneric(t *testing.T) {
	events := &fakeEvents{insertErr: errors.New("connection reset")}
	svc, _ := newTestService(policy.Defaults(), events)

	_, err := svc.Submit(context.Background(), Submission{ParticipantID: "p1", Kind: KindCheckIn})
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if aerr.Code != "INTERNAL" || aerr.Category != CategoryInternal {
		t.Errorf("got %+v", aerr)
	}
	if aerr.Message == "connection reset" {
		t.Error("internal cause must not leak to the caller")
	}
}
