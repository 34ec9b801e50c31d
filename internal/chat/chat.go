// Package chat defines the chat-platform collaborator interface the core
// depends on. The real client lives outside the core; tests use the fake in
// chattest.
package chat

import (
	"context"
	"errors"
)

// ErrForbidden is returned when the platform denies an operation, such as a
// blocked direct message or a channel without write permission.
var ErrForbidden = errors.New("chat: forbidden")

// Message is the subset of a platform message the core reads.
type Message struct {
	ID        int64
	ChannelID int64
	AuthorID  int64
	Content   string
}

// Channel is a platform channel the core can post to.
type Channel struct {
	ID      int64
	GuildID int64
	Name    string
}

// Reaction is a reaction-add notification from the platform.
type Reaction struct {
	GuildID   int64
	ChannelID int64
	MessageID int64
	UserID    int64
	Emoji     string
}

// Client is the capability surface the core requires from the platform.
type Client interface {
	// BotUserID identifies messages authored by this process.
	BotUserID() int64

	// SendMessage posts content to a channel and returns the new message ID.
	SendMessage(ctx context.Context, channelID int64, content string) (int64, error)

	// SendDirectMessage sends a DM. Returns ErrForbidden when the user
	// blocks DMs.
	SendDirectMessage(ctx context.Context, userID int64, content string) error

	// EditMessage replaces the content of an existing message.
	EditMessage(ctx context.Context, channelID, messageID int64, content string) error

	// AddReaction adds an emoji reaction to a message.
	AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error

	// OldestMessage returns the oldest message in a channel, or nil when
	// the channel is empty.
	OldestMessage(ctx context.Context, channelID int64) (*Message, error)

	// ChannelsNamed returns every channel with the given name across the
	// guilds the bot can see.
	ChannelsNamed(ctx context.Context, name string) ([]Channel, error)

	// ChannelByID returns the channel, or nil for channels the bot cannot
	// see, such as direct-message channels.
	ChannelByID(ctx context.Context, channelID int64) (*Channel, error)

	// UserRoles returns the role names currently applied to a user.
	UserRoles(ctx context.Context, guildID, userID int64) ([]string, error)

	// EnsureRole creates the named role on a guild if it does not exist.
	EnsureRole(ctx context.Context, guildID int64, name string) error

	// AssignRole applies the named role to a user.
	AssignRole(ctx context.Context, guildID, userID int64, name string) error
}
