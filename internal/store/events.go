package store

import (
	"context"
	"fmt"
	"time"

	"github.com/graaaaa/pomwars/internal/pom"
)

// InsertEvent inserts a community event.
// Overlap checking is the caller's responsibility (see ledger.CreateEvent).
// On success, sets e.ID to the inserted row's ID.
func (s *Store) InsertEvent(ctx context.Context, e *pom.Event) error {
	if err := validateEvent(e); err != nil {
		return err
	}

	const query = `
	INSERT INTO events (event_name, pom_goal, start_date, end_date)
	VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query, e.Name, e.PomGoal, formatTime(e.Start), formatTime(e.End))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return nil
}

func validateEvent(e *pom.Event) error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if e.PomGoal <= 0 {
		return fmt.Errorf("%w: pom_goal must be positive", ErrInvalidEvent)
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("%w: end precedes start", ErrInvalidEvent)
	}
	return nil
}

// DeleteOldestEventByName deletes the oldest event with the given name.
// Returns true if a row was deleted.
func (s *Store) DeleteOldestEventByName(ctx context.Context, name string) (bool, error) {
	const query = `
	DELETE FROM events WHERE id = (
		SELECT id FROM events WHERE event_name = ?
		ORDER BY start_date ASC, id ASC
		LIMIT 1
	)
	`

	result, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListEvents returns all events ordered by start date.
func (s *Store) ListEvents(ctx context.Context) ([]pom.Event, error) {
	const query = `
	SELECT id, event_name, pom_goal, start_date, end_date
	FROM events
	ORDER BY start_date ASC, id ASC
	`
	return s.queryEvents(ctx, query)
}

// OngoingEvents returns events whose [start, end] brackets t.
func (s *Store) OngoingEvents(ctx context.Context, t time.Time) ([]pom.Event, error) {
	const query = `
	SELECT id, event_name, pom_goal, start_date, end_date
	FROM events
	WHERE start_date <= ? AND end_date >= ?
	ORDER BY start_date ASC, id ASC
	`
	ts := formatTime(t)
	return s.queryEvents(ctx, query, ts, ts)
}

// UpcomingEvents returns events that start after t.
func (s *Store) UpcomingEvents(ctx context.Context, t time.Time) ([]pom.Event, error) {
	const query = `
	SELECT id, event_name, pom_goal, start_date, end_date
	FROM events
	WHERE start_date > ?
	ORDER BY start_date ASC, id ASC
	`
	return s.queryEvents(ctx, query, formatTime(t))
}

// OverlappingEvents returns events whose open interval intersects (start, end).
// Touching at a single instant is allowed and does not count as overlap.
func (s *Store) OverlappingEvents(ctx context.Context, start, end time.Time) ([]pom.Event, error) {
	const query = `
	SELECT id, event_name, pom_goal, start_date, end_date
	FROM events
	WHERE start_date < ? AND end_date > ?
	ORDER BY start_date ASC, id ASC
	`
	return s.queryEvents(ctx, query, formatTime(end), formatTime(start))
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]pom.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var items []pom.Event
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(&r.ID, &r.EventName, &r.PomGoal, &r.StartDate, &r.EndDate); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
