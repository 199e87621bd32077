package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEvent is returned when the storage-level uniqueness constraint
// on (participant, kind, day) rejects an insert. It is the stronger twin of
// the application-level existence check: two concurrent submissions cannot
// both slip past HasExisting.
var ErrDuplicateEvent = errors.New("duplicate attendance event for day")

// Repository persists attendance events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const eventColumns = `id, participant_id, kind, occurred_at, latitude, longitude, image_url, qr_payload, status, notes, remote_ip, created_at`

// Insert writes a new event. A unique violation on the per-day index maps
// to ErrDuplicateEvent.
func (r *Repository) Insert(ctx context.Context, evt Event) (Event, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_events
			(id, participant_id, kind, occurred_at, latitude, longitude, image_url, qr_payload, status, notes, remote_ip)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, evt.ID, evt.ParticipantID, evt.Kind, evt.OccurredAt, evt.Latitude, evt.Longitude,
		evt.ImageURL, evt.QRPayload, evt.Status, evt.Notes, evt.RemoteIP)
	if err := row.Scan(&evt.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Event{}, ErrDuplicateEvent
		}
		return Event{}, err
	}
	return evt, nil
}

// HasExisting reports whether an event of the given kind already exists for
// the participant on the civil day containing day. Bounds are inclusive.
// Deleted events do not count: removing a record frees the slot.
func (r *Repository) HasExisting(ctx context.Context, participantID string, kind Kind, day time.Time) (bool, error) {
	start, end := DayBounds(day)
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_events
			WHERE participant_id = $1 AND kind = $2
			  AND occurred_at >= $3 AND occurred_at <= $4
		)
	`, participantID, kind, start, end).Scan(&exists)
	return exists, err
}

// Get returns a single event by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM attendance_events WHERE id = $1
	`, id)
	var evt Event
	if err := scanEvent(row.Scan, &evt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &evt, nil
}

// Delete removes an event, freeing its per-day slot. Administrative only.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_events WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	ParticipantID string
	Kind          Kind
	From          time.Time
	To            time.Time
	Limit         int
	Offset        int
}

// List returns events matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]Event, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	query := `SELECT ` + eventColumns + ` FROM attendance_events`
	args := []any{}
	clauses := []string{}
	if f.ParticipantID != "" {
		args = append(args, f.ParticipantID)
		clauses = append(clauses, fmt.Sprintf("participant_id = $%d", len(args)))
	}
	if f.Kind != "" {
		args = append(args, f.Kind)
		clauses = append(clauses, fmt.Sprintf("kind = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		clauses = append(clauses, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		clauses = append(clauses, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := scanEvent(rows.Scan, &evt); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func scanEvent(scan func(dest ...any) error, evt *Event) error {
	return scan(&evt.ID, &evt.ParticipantID, &evt.Kind, &evt.OccurredAt,
		&evt.Latitude, &evt.Longitude, &evt.ImageURL, &evt.QRPayload,
		&evt.Status, &evt.Notes, &evt.RemoteIP, &evt.CreatedAt)
}
