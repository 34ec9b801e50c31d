package store

import (
	"context"
	"fmt"
)

// migrate creates tables lazily at startup.
func (s *Store) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS poms (
		id              INTEGER PRIMARY KEY,
		user_id         INTEGER NOT NULL,
		descript        TEXT,
		time_set        TEXT NOT NULL,
		current_session INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_poms_user ON poms(user_id, current_session);
	CREATE INDEX IF NOT EXISTS idx_poms_time ON poms(time_set, id);

	CREATE TABLE IF NOT EXISTS events (
		id         INTEGER PRIMARY KEY,
		event_name TEXT NOT NULL,
		pom_goal   INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		user_id            INTEGER PRIMARY KEY,
		timezone           TEXT NOT NULL DEFAULT '+0000',
		team               TEXT NOT NULL,
		inventory_string   TEXT NOT NULL DEFAULT '',
		player_level       INTEGER NOT NULL DEFAULT 1,
		attack_level       INTEGER NOT NULL DEFAULT 1,
		heavy_attack_level INTEGER NOT NULL DEFAULT 1,
		defend_level       INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS actions (
		id             INTEGER PRIMARY KEY,
		user_id        INTEGER NOT NULL,
		team           TEXT NOT NULL,
		type           TEXT NOT NULL,
		was_successful INTEGER NOT NULL,
		was_critical   INTEGER,
		items_dropped  TEXT NOT NULL DEFAULT '',
		damage         INTEGER NOT NULL DEFAULT 0,
		time_set       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_user_time ON actions(user_id, time_set);
	CREATE INDEX IF NOT EXISTS idx_actions_team_time ON actions(team, type, time_set);

	CREATE TABLE IF NOT EXISTS scoreboard_messages (
		channel_id INTEGER PRIMARY KEY,
		message_id INTEGER NOT NULL
	);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
