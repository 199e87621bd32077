package policy

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository persists policy settings as flat key/value rows in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a settings repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LoadAll scans the settings table into a flat map.
func (r *Repository) LoadAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Load resolves the current policy from the settings table. It is called on
// every admission request; the policy is deliberately never cached so that
// admin changes take effect on the next submission.
func (r *Repository) Load(ctx context.Context) (Config, error) {
	rows, err := r.LoadAll(ctx)
	if err != nil {
		return Config{}, fmt.Errorf("load settings: %w", err)
	}
	return Resolve(rows), nil
}

// ReplaceAll atomically replaces the whole settings table with the given rows.
func (r *Repository) ReplaceAll(ctx context.Context, rows map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return err
	}
	for k, v := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES ($1, $2)
		`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Reset clears all persisted settings so the documented defaults apply.
func (r *Repository) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings`)
	return err
}
