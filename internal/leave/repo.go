package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a request id matches nothing.
var ErrNotFound = errors.New("leave request not found")

// Repository persists leave requests in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const columns = `id, participant_id, kind, start_date, end_date, reason, status, decision_note, decided_by, decided_at, created_at`

// Create inserts a new pending request.
func (r *Repository) Create(ctx context.Context, req Request) (Request, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = StatusPending
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO leave_requests (id, participant_id, kind, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, req.ID, req.ParticipantID, req.Kind, req.StartDate, req.EndDate, req.Reason, req.Status)
	if err := row.Scan(&req.CreatedAt); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Get returns a request by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Request, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM leave_requests WHERE id = $1`, id)
	var req Request
	err := row.Scan(&req.ID, &req.ParticipantID, &req.Kind, &req.StartDate, &req.EndDate,
		&req.Reason, &req.Status, &req.DecisionNote, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// List returns requests, optionally narrowed to one participant or status.
func (r *Repository) List(ctx context.Context, participantID string, status Status) ([]Request, error) {
	query := `SELECT ` + columns + ` FROM leave_requests WHERE 1=1`
	args := []any{}
	if participantID != "" {
		args = append(args, participantID)
		query += ` AND participant_id = $1`
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.ParticipantID, &req.Kind, &req.StartDate, &req.EndDate,
			&req.Reason, &req.Status, &req.DecisionNote, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// SetDecision records an approve/reject decision on a pending request.
func (r *Repository) SetDecision(ctx context.Context, id string, status Status, note, deciderID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = $2, decision_note = $3, decided_by = $4, decided_at = $5
		WHERE id = $1 AND status = 'pending'
	`, id, status, note, deciderID, at)
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
