package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/graaaaa/pomwars/internal/pom"
)

// InsertUser inserts a war participant.
// Returns ErrUserAlreadyExists if the user has already joined this season.
// Uses ON CONFLICT(user_id) DO NOTHING so the duplicate check is atomic.
func (s *Store) InsertUser(ctx context.Context, u *pom.User) error {
	if u.UserID == 0 {
		return fmt.Errorf("%w: user_id is required", ErrInvalidAction)
	}
	if !u.Team.Valid() {
		return fmt.Errorf("%w: unknown team %q", ErrInvalidAction, u.Team)
	}

	const query = `
	INSERT INTO users
	(user_id, timezone, team, inventory_string, player_level, attack_level, heavy_attack_level, defend_level)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		u.UserID,
		u.Timezone,
		string(u.Team),
		u.Inventory,
		u.PlayerLevel,
		u.AttackLevel,
		u.HeavyAttackLevel,
		u.DefendLevel,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserAlreadyExists
	}
	return nil
}

// GetUser returns the war participant with the given ID.
// Returns ErrUserNotFound if they have not joined this season.
func (s *Store) GetUser(ctx context.Context, userID int64) (*pom.User, error) {
	const query = `
	SELECT user_id, timezone, team, inventory_string, player_level, attack_level, heavy_attack_level, defend_level
	FROM users
	WHERE user_id = ?
	`

	var (
		u    pom.User
		team string
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&u.UserID,
		&u.Timezone,
		&team,
		&u.Inventory,
		&u.PlayerLevel,
		&u.AttackLevel,
		&u.HeavyAttackLevel,
		&u.DefendLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.Team = pom.Team(team)
	return &u, nil
}

// UpdateUserTeam updates the stored team for a participant.
func (s *Store) UpdateUserTeam(ctx context.Context, userID int64, team pom.Team) error {
	const query = `UPDATE users SET team = ? WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query, string(team), userID)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateUserTimezone updates the stored timezone offset string.
func (s *Store) UpdateUserTimezone(ctx context.Context, userID int64, tz string) error {
	const query = `UPDATE users SET timezone = ? WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query, tz, userID)
	if err != nil {
		return fmt.Errorf("update timezone: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TeamPopulation returns the number of participants on the given team.
func (s *Store) TeamPopulation(ctx context.Context, team pom.Team) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE team = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, string(team)).Scan(&count); err != nil {
		return 0, fmt.Errorf("team population: %w", err)
	}
	return count, nil
}
