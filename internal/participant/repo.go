package participant

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository persists participants in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, handle, name, institution, status, created_at, updated_at, deleted_at`

// Create inserts a new participant.
func (r *Repository) Create(ctx context.Context, p Participant) (Participant, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO participants (id, handle, name, institution, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, p.ID, p.Handle, p.Name, p.Institution, p.Status)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return Participant{}, err
	}
	return p, nil
}

// Lookup returns a participant by id, or nil when absent or soft-deleted.
func (r *Repository) Lookup(ctx context.Context, id string) (*Participant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM participants WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return scanOne(row)
}

// LookupByHandle returns a participant by handle, or nil when absent.
func (r *Repository) LookupByHandle(ctx context.Context, handle string) (*Participant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM participants WHERE handle = $1 AND deleted_at IS NULL
	`, handle)
	return scanOne(row)
}

// List returns all non-deleted participants.
func (r *Repository) List(ctx context.Context) ([]Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM participants WHERE deleted_at IS NULL
		ORDER BY handle
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.Handle, &p.Name, &p.Institution, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update overwrites mutable participant fields.
func (r *Repository) Update(ctx context.Context, p Participant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE participants
		SET name = $2, institution = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, p.ID, p.Name, p.Institution, p.Status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SoftDelete marks a participant deleted without removing history.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE participants SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ErrNotFound is returned by mutations that matched no participant.
var ErrNotFound = errors.New("participant not found")

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOne(row *sql.Row) (*Participant, error) {
	var p Participant
	if err := row.Scan(&p.ID, &p.Handle, &p.Name, &p.Institution, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
