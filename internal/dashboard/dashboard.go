// Package dashboard answers attendance statistics queries.
package dashboard

import (
	"context"
	"database/sql"
	"time"
)

// RangeStats summarizes attendance over a date range.
type RangeStats struct {
	Present  int `json:"present"`
	Late     int `json:"late"`
	CheckOut int `json:"check_out"`
	Leave    int `json:"leave"`
	Sick     int `json:"sick"`
	Vacation int `json:"vacation"`
}

// TodayStats summarizes today's clock activity.
type TodayStats struct {
	ActiveParticipants int `json:"active_participants"`
	CheckedIn          int `json:"checked_in"`
	CheckedOut         int `json:"checked_out"`
	Late               int `json:"late"`
}

// Queries runs dashboard aggregations against Postgres.
type Queries struct {
	db *sql.DB
}

// NewQueries creates the query runner.
func NewQueries(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Range aggregates events between from and to (inclusive), optionally for a
// single participant.
func (q *Queries) Range(ctx context.Context, participantID string, from, to time.Time) (RangeStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'CHECK_IN' AND status = 'VALID'),
			COUNT(*) FILTER (WHERE kind = 'CHECK_IN' AND status = 'LATE'),
			COUNT(*) FILTER (WHERE kind = 'CHECK_OUT'),
			COUNT(*) FILTER (WHERE kind = 'LEAVE'),
			COUNT(*) FILTER (WHERE kind = 'SICK'),
			COUNT(*) FILTER (WHERE kind = 'VACATION')
		FROM attendance_events
		WHERE occurred_at >= $1 AND occurred_at <= $2`
	args := []any{from, to}
	if participantID != "" {
		query += ` AND participant_id = $3`
		args = append(args, participantID)
	}

	var s RangeStats
	err := q.db.QueryRowContext(ctx, query, args...).
		Scan(&s.Present, &s.Late, &s.CheckOut, &s.Leave, &s.Sick, &s.Vacation)
	return s, err
}

// Today summarizes the given civil day across all active participants.
func (q *Queries) Today(ctx context.Context, dayStart, dayEnd time.Time) (TodayStats, error) {
	var s TodayStats
	err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM participants WHERE status = 'active' AND deleted_at IS NULL),
			COUNT(*) FILTER (WHERE kind = 'CHECK_IN'),
			COUNT(*) FILTER (WHERE kind = 'CHECK_OUT'),
			COUNT(*) FILTER (WHERE kind = 'CHECK_IN' AND status = 'LATE')
		FROM attendance_events
		WHERE occurred_at >= $1 AND occurred_at <= $2
	`, dayStart, dayEnd).Scan(&s.ActiveParticipants, &s.CheckedIn, &s.CheckedOut, &s.Late)
	return s, err
}
