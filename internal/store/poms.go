package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/graaaaa/pomwars/internal/pom"
)

// InsertPoms inserts count pom rows for the user, all in the current session.
func (s *Store) InsertPoms(ctx context.Context, userID int64, description *string, count int, timeSet time.Time) error {
	if userID == 0 {
		return fmt.Errorf("%w: user_id is required", ErrInvalidPom)
	}
	if count < 1 {
		return fmt.Errorf("%w: count must be positive", ErrInvalidPom)
	}
	if timeSet.IsZero() {
		return fmt.Errorf("%w: time_set is required", ErrInvalidPom)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertPomsTx(ctx, tx, userID, description, count, timeSet); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertPomsTx(ctx context.Context, tx *sql.Tx, userID int64, description *string, count int, timeSet time.Time) error {
	const query = `
	INSERT INTO poms (user_id, descript, time_set, current_session)
	VALUES (?, ?, ?, 1)
	`

	var descript sql.NullString
	if description != nil {
		descript = sql.NullString{String: *description, Valid: true}
	}

	ts := formatTime(timeSet)
	for i := 0; i < count; i++ {
		if _, err := tx.ExecContext(ctx, query, userID, descript, ts); err != nil {
			return fmt.Errorf("insert pom: %w", err)
		}
	}
	return nil
}

// BankPoms flips all of the user's current-session poms to banked.
// Returns the number of rows affected.
func (s *Store) BankPoms(ctx context.Context, userID int64) (int64, error) {
	const query = `UPDATE poms SET current_session = 0 WHERE user_id = ? AND current_session = 1`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("bank poms: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// UndoPoms removes the user's n most recent poms by time_set, newest first.
// Returns the number of rows removed.
func (s *Store) UndoPoms(ctx context.Context, userID int64, n int) (int64, error) {
	const query = `
	DELETE FROM poms WHERE id IN (
		SELECT id FROM poms WHERE user_id = ?
		ORDER BY time_set DESC, id DESC
		LIMIT ?
	)
	`

	result, err := s.db.ExecContext(ctx, query, userID, n)
	if err != nil {
		return 0, fmt.Errorf("undo poms: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// DeletePoms deletes all of the user's poms within the scope.
// Returns the number of rows removed.
func (s *Store) DeletePoms(ctx context.Context, userID int64, scope pom.Scope) (int64, error) {
	query := `DELETE FROM poms WHERE user_id = ?` + scopeClause(scope)

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete poms: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// RenamePoms updates the description on all of the user's poms matching old
// within the scope. Renaming never moves a pom between session and bank.
// Returns the number of rows affected.
func (s *Store) RenamePoms(ctx context.Context, userID int64, old, new string, scope pom.Scope) (int64, error) {
	query := `UPDATE poms SET descript = ? WHERE user_id = ? AND descript = ?` + scopeClause(scope)

	result, err := s.db.ExecContext(ctx, query, new, userID, old)
	if err != nil {
		return 0, fmt.Errorf("rename poms: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scopeClause(scope pom.Scope) string {
	switch scope {
	case pom.ScopeSession:
		return ` AND current_session = 1`
	case pom.ScopeBank:
		return ` AND current_session = 0`
	default:
		return ``
	}
}

// PomFilter contains filter options for querying poms.
type PomFilter struct {
	UserID      *int64
	Description *string
	Since       *time.Time
	Until       *time.Time
	Session     *bool
	Limit       int
}

// QueryPoms queries poms with optional filters.
// Results are in insertion order (time_set ASC, id ASC); when Limit is set
// the newest matching rows are returned, newest first.
func (s *Store) QueryPoms(ctx context.Context, f PomFilter) ([]pom.Pom, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(`
SELECT id, user_id, descript, time_set, current_session
FROM poms
WHERE 1=1
`)

	if f.UserID != nil {
		sb.WriteString(" AND user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Description != nil {
		sb.WriteString(" AND descript = ?")
		args = append(args, *f.Description)
	}
	if f.Since != nil {
		sb.WriteString(" AND time_set >= ?")
		args = append(args, formatTime(*f.Since))
	}
	if f.Until != nil {
		sb.WriteString(" AND time_set <= ?")
		args = append(args, formatTime(*f.Until))
	}
	if f.Session != nil {
		sb.WriteString(" AND current_session = ?")
		args = append(args, boolToInt(*f.Session))
	}

	if f.Limit > 0 {
		sb.WriteString(" ORDER BY time_set DESC, id DESC LIMIT ?")
		args = append(args, f.Limit)
	} else {
		sb.WriteString(" ORDER BY time_set ASC, id ASC")
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query poms: %w", err)
	}
	defer rows.Close()

	var items []pom.Pom
	for rows.Next() {
		var r pomRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Descript, &r.TimeSet, &r.CurrentSession); err != nil {
			return nil, fmt.Errorf("scan pom: %w", err)
		}
		p, err := r.toPom()
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// CountPoms counts the user's poms, optionally restricted to the session scope.
func (s *Store) CountPoms(ctx context.Context, userID int64, scope pom.Scope) (int, error) {
	query := `SELECT COUNT(*) FROM poms WHERE user_id = ?` + scopeClause(scope)

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count poms: %w", err)
	}
	return count, nil
}

// CountPomsBetween counts poms across all users in [since, until].
// Used for event goal detection.
func (s *Store) CountPomsBetween(ctx context.Context, since, until time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM poms WHERE time_set >= ? AND time_set <= ?`

	var count int
	err := s.db.QueryRowContext(ctx, query, formatTime(since), formatTime(until)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count poms between: %w", err)
	}
	return count, nil
}
