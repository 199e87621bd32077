// Package audit records every admission outcome for later review.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one admission outcome. It travels over the queue as JSON and is
// persisted verbatim by the worker.
type Entry struct {
	ParticipantID string    `json:"participant_id"`
	Kind          string    `json:"kind"`
	Outcome       string    `json:"outcome"` // accepted | rejected
	Code          string    `json:"code"`
	Message       string    `json:"message,omitempty"`
	RemoteIP      string    `json:"remote_ip,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Marshal encodes the entry for queue transport.
func (e Entry) Marshal() []byte {
	b, _ := json.Marshal(e)
	return b
}

// Unmarshal decodes a queued entry.
func Unmarshal(data []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(data, &e)
	return e, err
}

// Repository persists audit entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one audit row.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, participant_id, kind, outcome, code, message, remote_ip, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.NewString(), e.ParticipantID, e.Kind, e.Outcome, e.Code, e.Message, e.RemoteIP, e.OccurredAt)
	return err
}
