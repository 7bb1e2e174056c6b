package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteSink appends events to the events table created by store.OpenSQLite.
type SQLiteSink struct {
	db *sql.DB
}

// LabelCount is the number of events recorded under one label.
type LabelCount struct {
	Label string
	Count int
}

func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db}
}

func (s *SQLiteSink) Track(ctx context.Context, e Event) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var value sql.NullInt64
	if e.Value != nil {
		value = sql.NullInt64{Int64: int64(*e.Value), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (category, action, label, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Category, e.Action, e.Label, value, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// Events returns the events for one category and action, newest first.
func (s *SQLiteSink) Events(ctx context.Context, category, action string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, action, label, value, created_at
		 FROM events WHERE category = ? AND action = ? ORDER BY created_at DESC, id DESC`,
		category, action,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var value sql.NullInt64
		var createdAt int64
		if err := rows.Scan(&e.Category, &e.Action, &e.Label, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if value.Valid {
			v := int(value.Int64)
			e.Value = &v
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// Counts returns per-label event totals for one category and action,
// ordered by label.
func (s *SQLiteSink) Counts(ctx context.Context, category, action string) ([]LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, COUNT(*)
		FROM events
		WHERE category = ? AND action = ?
		GROUP BY label
		ORDER BY label
	`, category, action)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	var counts []LabelCount
	for rows.Next() {
		var c LabelCount
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}
