package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetScoreboardMessage returns the recorded scoreboard message ID for a
// channel, or 0 if none has been recorded.
func (s *Store) GetScoreboardMessage(ctx context.Context, channelID int64) (int64, error) {
	const query = `SELECT message_id FROM scoreboard_messages WHERE channel_id = ?`

	var messageID int64
	err := s.db.QueryRowContext(ctx, query, channelID).Scan(&messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get scoreboard message: %w", err)
	}
	return messageID, nil
}

// SetScoreboardMessage records the scoreboard message ID for a channel,
// replacing any previous record.
func (s *Store) SetScoreboardMessage(ctx context.Context, channelID, messageID int64) error {
	const query = `
	INSERT INTO scoreboard_messages (channel_id, message_id)
	VALUES (?, ?)
	ON CONFLICT(channel_id) DO UPDATE SET message_id = excluded.message_id
	`

	if _, err := s.db.ExecContext(ctx, query, channelID, messageID); err != nil {
		return fmt.Errorf("set scoreboard message: %w", err)
	}
	return nil
}
