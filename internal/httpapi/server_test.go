package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
	"github.com/rafli4514/absensi-magang-sub001/internal/audit"
	"github.com/rafli4514/absensi-magang-sub001/internal/auth"
	"github.com/rafli4514/absensi-magang-sub001/internal/config"
	"github.com/rafli4514/absensi-magang-sub001/internal/participant"
	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
	"github.com/rafli4514/absensi-magang-sub001/internal/queue"
)

type stubDirectory struct {
	participants map[string]*participant.Participant
}

func (s *stubDirectory) Lookup(_ context.Context, id string) (*participant.Participant, error) {
	return s.participants[id], nil
}

type stubPolicies struct {
	cfg policy.Config
}

func (s *stubPolicies) Load(context.Context) (policy.Config, error) {
	return s.cfg, nil
}

type stubEvents struct {
	stored []attendance.Event
}

func (s *stubEvents) HasExisting(_ context.Context, participantID string, kind attendance.Kind, day time.Time) (bool, error) {
	start, end := attendance.DayBounds(day)
	for _, evt := range s.stored {
		if evt.ParticipantID == participantID && evt.Kind == kind &&
			!evt.OccurredAt.Before(start) && !evt.OccurredAt.After(end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubEvents) Insert(_ context.Context, evt attendance.Event) (attendance.Event, error) {
	evt.ID = "evt-1"
	evt.CreatedAt = time.Now()
	s.stored = append(s.stored, evt)
	return evt, nil
}

// captureQueue records published messages for assertions.
type captureQueue struct {
	published []queue.Message
}

func (q *captureQueue) Publish(_ context.Context, msg queue.Message) error {
	q.published = append(q.published, msg)
	return nil
}

func (q *captureQueue) Consume(context.Context) (<-chan queue.Message, error) {
	ch := make(chan queue.Message)
	close(ch)
	return ch, nil
}

const (
	testKey    = "test-signing-key"
	testIssuer = "absensi-test"
)

func newTestRouter(t *testing.T) (*gin.Engine, *stubEvents, *captureQueue) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := &stubDirectory{participants: map[string]*participant.Participant{
		"p1": {ID: "p1", Handle: "intern1", Status: participant.StatusActive},
	}}
	events := &stubEvents{}
	q := &captureQueue{}

	srv := NewServer(Deps{
		Cfg: config.App{
			JWTSigningKey: testKey,
			JWTIssuer:     testIssuer,
		},
		Admissions: attendance.NewService(dir, &stubPolicies{cfg: policy.Defaults()}, events),
		Queue:      q,
	})
	return srv.Router(), events, q
}

func bearerToken(t *testing.T, role, participantID string) string {
	t.Helper()
	pair, err := auth.Issue("user-1", role, participantID, testIssuer, testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + pair.AccessToken
}

func postAttendance(router *gin.Engine, token string, body map[string]any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/attendance", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code     string         `json:"code"`
		Category string         `json:"category"`
		Meta     map[string]any `json:"meta"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestSubmitAttendanceRequiresToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postAttendance(router, "", map[string]any{"kind": "CHECK_IN"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestSubmitAttendanceRoleForbidden(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postAttendance(router, bearerToken(t, auth.RoleMentor, ""), map[string]any{"kind": "CHECK_IN"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rec.Code)
	}
}

func TestSubmitAttendanceParticipantSelfScope(t *testing.T) {
	router, events, q := newTestRouter(t)

	// A participant's own id wins over whatever the body claims.
	rec := postAttendance(router, bearerToken(t, auth.RoleParticipant, "p1"), map[string]any{
		"participant_id": "someone-else",
		"kind":           "CHECK_IN",
		"timestamp":      "2025-06-02T08:05:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success envelope")
	}
	evt, ok := env.Data["event"].(map[string]any)
	if !ok {
		t.Fatalf("missing event in data: %v", env.Data)
	}
	if evt["participant_id"] != "p1" {
		t.Errorf("participant_id: got %v, want p1", evt["participant_id"])
	}
	if evt["status"] != "VALID" {
		t.Errorf("status: got %v, want VALID", evt["status"])
	}

	if len(events.stored) != 1 || events.stored[0].ParticipantID != "p1" {
		t.Errorf("stored events: %+v", events.stored)
	}

	if len(q.published) != 1 {
		t.Fatalf("audit messages published: got %d, want 1", len(q.published))
	}
	if q.published[0].Type != "admission" {
		t.Errorf("message type: got %s", q.published[0].Type)
	}
	entry, err := audit.Unmarshal(q.published[0].Body)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Outcome != "accepted" || entry.ParticipantID != "p1" {
		t.Errorf("audit entry: %+v", entry)
	}
}

func TestSubmitAttendanceRejectedEnvelope(t *testing.T) {
	router, events, q := newTestRouter(t)

	// 2025-06-08 is a Sunday.
	rec := postAttendance(router, bearerToken(t, auth.RoleParticipant, "p1"), map[string]any{
		"kind":      "CHECK_IN",
		"timestamp": "2025-06-08T08:05:00",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected failure envelope")
	}
	if env.Error == nil || env.Error.Code != "INVALID_WORK_DAY" {
		t.Fatalf("error: %+v", env.Error)
	}
	if env.Error.Category != "POLICY_VIOLATION" {
		t.Errorf("category: got %s", env.Error.Category)
	}

	if len(events.stored) != 0 {
		t.Errorf("rejected submission must not persist, stored %d", len(events.stored))
	}

	if len(q.published) != 1 {
		t.Fatalf("audit messages published: got %d, want 1", len(q.published))
	}
	entry, err := audit.Unmarshal(q.published[0].Body)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Outcome != "rejected" || entry.Code != "INVALID_WORK_DAY" {
		t.Errorf("audit entry: %+v", entry)
	}
}

func TestSubmitAttendanceIPWhitelistUsesForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := policy.Defaults()
	cfg.Network.IPWhitelistEnabled = true
	cfg.Network.IPWhitelist = []string{"1.2.3.4"}

	dir := &stubDirectory{participants: map[string]*participant.Participant{
		"p1": {ID: "p1", Handle: "intern1", Status: participant.StatusActive},
	}}
	events := &stubEvents{}
	srv := NewServer(Deps{
		Cfg:        config.App{JWTSigningKey: testKey, JWTIssuer: testIssuer},
		Admissions: attendance.NewService(dir, &stubPolicies{cfg: cfg}, events),
		Queue:      &captureQueue{},
	})
	router := srv.Router()

	body, _ := json.Marshal(map[string]any{
		"kind":      "CHECK_IN",
		"timestamp": "2025-06-02T08:05:00",
	})

	// Whitelisted address in the forwarded-for header, proxy appended last.
	req := httptest.NewRequest(http.MethodPost, "/v1/attendance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, auth.RoleParticipant, "p1"))
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if len(events.stored) != 1 || events.stored[0].RemoteIP != "1.2.3.4" {
		t.Errorf("stored events: %+v", events.stored)
	}

	// No forwarded-for header: the transport peer (httptest's 192.0.2.1)
	// is not whitelisted.
	req = httptest.NewRequest(http.MethodPost, "/v1/attendance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, auth.RoleParticipant, "p1"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403 (%s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "IP_NOT_WHITELISTED" {
		t.Fatalf("error: %+v", env.Error)
	}
}

func TestSubmitAttendanceOutOfRangeMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := policy.Defaults()
	cfg.Location.UseRadius = true
	cfg.Location.Required = true
	officeLat, officeLon := 5.5454, 95.3176
	cfg.Location.Office = policy.Office{Latitude: &officeLat, Longitude: &officeLon}

	dir := &stubDirectory{participants: map[string]*participant.Participant{
		"p1": {ID: "p1", Handle: "intern1", Status: participant.StatusActive},
	}}
	srv := NewServer(Deps{
		Cfg:        config.App{JWTSigningKey: testKey, JWTIssuer: testIssuer},
		Admissions: attendance.NewService(dir, &stubPolicies{cfg: cfg}, &stubEvents{}),
		Queue:      &captureQueue{},
	})
	router := srv.Router()

	rec := postAttendance(router, bearerToken(t, auth.RoleParticipant, "p1"), map[string]any{
		"kind":      "CHECK_IN",
		"timestamp": "2025-06-02T08:05:00",
		"location":  map[string]any{"latitude": 5.5499, "longitude": 95.3176},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "LOCATION_OUT_OF_RANGE" {
		t.Fatalf("error: %+v", env.Error)
	}
	distance, ok := env.Error.Meta["distance"].(float64)
	if !ok || distance < 400 || distance > 600 {
		t.Errorf("distance meta: %v", env.Error.Meta)
	}
}
