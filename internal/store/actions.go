package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/graaaaa/pomwars/internal/pom"
)

// InsertAction appends an action row. Actions are never mutated afterwards.
// On success, sets a.ID to the inserted row's ID.
func (s *Store) InsertAction(ctx context.Context, a *pom.Action) error {
	if err := validateAction(a); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertActionTx(ctx, tx, a); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// InsertActionWithPom writes one pom row and the action row in a single
// transaction, so an action row never exists without its pom.
func (s *Store) InsertActionWithPom(ctx context.Context, a *pom.Action, description *string) error {
	if err := validateAction(a); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertPomsTx(ctx, tx, a.UserID, description, 1, a.TimeSet); err != nil {
		return err
	}
	if err := insertActionTx(ctx, tx, a); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertActionTx(ctx context.Context, tx *sql.Tx, a *pom.Action) error {
	const query = `
	INSERT INTO actions
	(user_id, team, type, was_successful, was_critical, items_dropped, damage, time_set)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var critical sql.NullInt64
	if a.WasCritical != nil {
		critical = sql.NullInt64{Int64: int64(boolToInt(*a.WasCritical)), Valid: true}
	}

	result, err := tx.ExecContext(ctx, query,
		a.UserID,
		string(a.Team),
		string(a.Type),
		boolToInt(a.WasSuccessful),
		critical,
		a.ItemsDropped,
		a.RawDamage,
		formatTime(a.TimeSet),
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	a.ID = id
	return nil
}

func validateAction(a *pom.Action) error {
	if a.UserID == 0 {
		return fmt.Errorf("%w: user_id is required", ErrInvalidAction)
	}
	if !a.Team.Valid() {
		return fmt.Errorf("%w: unknown team %q", ErrInvalidAction, a.Team)
	}
	if a.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidAction)
	}
	if a.TimeSet.IsZero() {
		return fmt.Errorf("%w: time_set is required", ErrInvalidAction)
	}
	return nil
}

// ActionFilter contains filter options for querying actions.
type ActionFilter struct {
	UserID     *int64
	Team       *pom.Team
	Type       *pom.ActionType
	Successful *bool
	Since      *time.Time
	Until      *time.Time
}

// QueryActions queries actions with optional filters, oldest first.
// Callers are advised to pass a time range for bulk reads.
func (s *Store) QueryActions(ctx context.Context, f ActionFilter) ([]pom.Action, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(`
SELECT id, user_id, team, type, was_successful, was_critical, items_dropped, damage, time_set
FROM actions
WHERE 1=1
`)

	if f.UserID != nil {
		sb.WriteString(" AND user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Team != nil {
		sb.WriteString(" AND team = ?")
		args = append(args, string(*f.Team))
	}
	if f.Type != nil {
		sb.WriteString(" AND type = ?")
		args = append(args, string(*f.Type))
	}
	if f.Successful != nil {
		sb.WriteString(" AND was_successful = ?")
		args = append(args, boolToInt(*f.Successful))
	}
	if f.Since != nil {
		sb.WriteString(" AND time_set >= ?")
		args = append(args, formatTime(*f.Since))
	}
	if f.Until != nil {
		sb.WriteString(" AND time_set <= ?")
		args = append(args, formatTime(*f.Until))
	}

	sb.WriteString(" ORDER BY time_set ASC, id ASC")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var items []pom.Action
	for rows.Next() {
		var r actionRow
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Team, &r.Type, &r.WasSuccessful,
			&r.WasCritical, &r.ItemsDropped, &r.Damage, &r.TimeSet,
		); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a, err := r.toAction()
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// CountUserActionsBetween counts a user's actions in [since, until].
func (s *Store) CountUserActionsBetween(ctx context.Context, userID int64, since, until time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM actions WHERE user_id = ? AND time_set >= ? AND time_set <= ?`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, formatTime(since), formatTime(until)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return count, nil
}

// HeavyMissStreak returns the number of consecutive unsuccessful heavy
// attacks walking backward from the user's most recent action, stopping at
// the first successful action of any type.
func (s *Store) HeavyMissStreak(ctx context.Context, userID int64) (int, error) {
	const query = `
	SELECT type, was_successful FROM actions
	WHERE user_id = ?
	ORDER BY time_set DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("heavy miss streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var (
			typ        string
			successful int
		)
		if err := rows.Scan(&typ, &successful); err != nil {
			return 0, fmt.Errorf("scan action: %w", err)
		}
		if successful != 0 {
			break
		}
		if pom.ActionType(typ) == pom.ActionHeavyAttack {
			streak++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("rows error: %w", err)
	}

	return streak, nil
}

// Defender is a distinct user with a successful defend in a time window.
type Defender struct {
	UserID      int64
	DefendLevel int
}

// SuccessfulDefenders returns the distinct users on the given team with a
// successful defend action in [since, until]. Stacking requires distinct
// defenders, so each user appears at most once.
func (s *Store) SuccessfulDefenders(ctx context.Context, team pom.Team, since, until time.Time) ([]Defender, error) {
	const query = `
	SELECT DISTINCT a.user_id, u.defend_level
	FROM actions a
	JOIN users u ON u.user_id = a.user_id
	WHERE a.team = ? AND a.type = ? AND a.was_successful = 1
	  AND a.time_set >= ? AND a.time_set <= ?
	`

	rows, err := s.db.QueryContext(ctx, query,
		string(team), string(pom.ActionDefend), formatTime(since), formatTime(until))
	if err != nil {
		return nil, fmt.Errorf("query defenders: %w", err)
	}
	defer rows.Close()

	var defenders []Defender
	for rows.Next() {
		var d Defender
		if err := rows.Scan(&d.UserID, &d.DefendLevel); err != nil {
			return nil, fmt.Errorf("scan defender: %w", err)
		}
		defenders = append(defenders, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return defenders, nil
}

// TeamStats holds aggregate numbers for one team's scoreboard column.
type TeamStats struct {
	RawDamage  int64 // hundredths
	Actions    int
	Favorite   pom.ActionType
	Population int
}

// Damage returns whole points of damage, truncated the way the scoreboard
// displays it.
func (t TeamStats) Damage() int64 {
	return t.RawDamage / 100
}

// GetTeamStats aggregates one team's scoreboard numbers.
func (s *Store) GetTeamStats(ctx context.Context, team pom.Team) (*TeamStats, error) {
	stats := &TeamStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(damage), 0), COUNT(*)
		FROM actions
		WHERE team = ?
	`, string(team)).Scan(&stats.RawDamage, &stats.Actions)
	if err != nil {
		return nil, fmt.Errorf("team totals: %w", err)
	}

	// Favorite action type: max count over the enum, stable on ties.
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*) AS n
		FROM actions
		WHERE team = ?
		GROUP BY type
	`, string(team))
	if err != nil {
		return nil, fmt.Errorf("team favorites: %w", err)
	}
	defer rows.Close()

	counts := make(map[pom.ActionType]int)
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		counts[pom.ActionType(typ)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	best := 0
	for _, typ := range pom.ActionTypes {
		if counts[typ] > best {
			best = counts[typ]
			stats.Favorite = typ
		}
	}

	pop, err := s.TeamPopulation(ctx, team)
	if err != nil {
		return nil, err
	}
	stats.Population = pop

	return stats, nil
}
