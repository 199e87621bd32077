// Package logbook stores participants' daily activity entries.
package logbook

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an entry id matches nothing.
var ErrNotFound = errors.New("logbook entry not found")

// Entry is one daily activity record.
type Entry struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	Date          time.Time `json:"date"`
	Activity      string    `json:"activity"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Reviewed      bool      `json:"reviewed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Repository persists logbook entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const columns = `id, participant_id, date, activity, description, image_url, reviewed, created_at, updated_at`

// Create inserts a new entry.
func (r *Repository) Create(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO logbook_entries (id, participant_id, date, activity, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, e.ID, e.ParticipantID, e.Date, e.Activity, e.Description, e.ImageURL)
	if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Get returns an entry by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM logbook_entries WHERE id = $1`, id)
	var e Entry
	err := row.Scan(&e.ID, &e.ParticipantID, &e.Date, &e.Activity, &e.Description,
		&e.ImageURL, &e.Reviewed, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// List returns entries, optionally narrowed to one participant, newest first.
func (r *Repository) List(ctx context.Context, participantID string) ([]Entry, error) {
	query := `SELECT ` + columns + ` FROM logbook_entries`
	args := []any{}
	if participantID != "" {
		query += ` WHERE participant_id = $1`
		args = append(args, participantID)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.Date, &e.Activity, &e.Description,
			&e.ImageURL, &e.Reviewed, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update overwrites an entry's activity fields. Only the owner may update,
// enforced by the participant id in the predicate.
func (r *Repository) Update(ctx context.Context, e Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE logbook_entries
		SET activity = $3, description = $4, image_url = $5, updated_at = NOW()
		WHERE id = $1 AND participant_id = $2
	`, e.ID, e.ParticipantID, e.Activity, e.Description, e.ImageURL)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkReviewed flags an entry as reviewed by a mentor.
func (r *Repository) MarkReviewed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE logbook_entries SET reviewed = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
