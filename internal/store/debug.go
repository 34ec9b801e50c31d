//go:build pomdebug

package store

import (
	"context"
	"fmt"
)

// DropAllRows clears every table. Only available in pomdebug builds.
func (s *Store) DropAllRows(ctx context.Context) error {
	const query = `
	DELETE FROM poms;
	DELETE FROM events;
	DELETE FROM users;
	DELETE FROM actions;
	DELETE FROM scoreboard_messages;
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("drop all rows: %w", err)
	}
	return nil
}
