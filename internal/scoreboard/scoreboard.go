// Package scoreboard maintains one live team-standings message per join
// channel, editing it in place as the war progresses.
package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/graaaaa/pomwars/internal/chat"
	"github.com/graaaaa/pomwars/internal/pom"
	"github.com/graaaaa/pomwars/internal/store"
)

const winnerBadge = "👑"

var emblems = map[pom.Team]string{
	pom.TeamKnights: "🛡️",
	pom.TeamVikings: "🪓",
}

// Board keeps the scoreboard messages current. Updates for the same channel
// are serialized so concurrent triggers cannot post duplicates.
type Board struct {
	store       *store.Store
	client      chat.Client
	logger      *slog.Logger
	joinChannel string
	joinEmoji   string

	mu       sync.Mutex
	channels map[int64]*sync.Mutex
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) { b.logger = logger }
}

// New creates a Board posting to every channel named joinChannel.
func New(s *store.Store, client chat.Client, joinChannel, joinEmoji string, opts ...Option) *Board {
	b := &Board{
		store:       s,
		client:      client,
		logger:      slog.Default(),
		joinChannel: joinChannel,
		joinEmoji:   joinEmoji,
		channels:    make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) channelLock(channelID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	mu, ok := b.channels[channelID]
	if !ok {
		mu = &sync.Mutex{}
		b.channels[channelID] = mu
	}
	return mu
}

// Result lists the channels a refresh could not update.
type Result struct {
	// Full channels already have an oldest message that is not ours.
	Full []chat.Channel
	// Restricted channels denied the write.
	Restricted []chat.Channel
}

// Refresh re-renders the standings and pushes them to every join channel.
func (b *Board) Refresh(ctx context.Context) (*Result, error) {
	knights, err := b.store.GetTeamStats(ctx, pom.TeamKnights)
	if err != nil {
		return nil, fmt.Errorf("knight stats: %w", err)
	}
	vikings, err := b.store.GetTeamStats(ctx, pom.TeamVikings)
	if err != nil {
		return nil, fmt.Errorf("viking stats: %w", err)
	}
	body := Render(knights, vikings)

	channels, err := b.client.ChannelsNamed(ctx, b.joinChannel)
	if err != nil {
		return nil, fmt.Errorf("list join channels: %w", err)
	}

	result := &Result{}
	for _, ch := range channels {
		switch err := b.updateChannel(ctx, ch.ID, body); {
		case errors.Is(err, errChannelFull):
			result.Full = append(result.Full, ch)
		case errors.Is(err, chat.ErrForbidden):
			result.Restricted = append(result.Restricted, ch)
		case err != nil:
			return nil, fmt.Errorf("update channel %d: %w", ch.ID, err)
		}
	}
	return result, nil
}

// errChannelFull marks a channel whose oldest message belongs to someone else.
var errChannelFull = errors.New("channel full")

func (b *Board) updateChannel(ctx context.Context, channelID int64, body string) error {
	lock := b.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	// Fast path: a recorded message ID from an earlier refresh.
	messageID, err := b.store.GetScoreboardMessage(ctx, channelID)
	if err != nil {
		return err
	}
	if messageID != 0 {
		if err := b.client.EditMessage(ctx, channelID, messageID, body); err == nil {
			return nil
		}
		// The recorded message is gone; fall through and rediscover.
		b.logger.Warn("recorded scoreboard message unusable", "channel", channelID, "message", messageID)
	}

	oldest, err := b.client.OldestMessage(ctx, channelID)
	if err != nil {
		return err
	}

	switch {
	case oldest == nil:
		return b.post(ctx, channelID, body)
	case oldest.AuthorID == b.client.BotUserID():
		if err := b.client.EditMessage(ctx, channelID, oldest.ID, body); err != nil {
			return err
		}
		return b.store.SetScoreboardMessage(ctx, channelID, oldest.ID)
	default:
		return errChannelFull
	}
}

func (b *Board) post(ctx context.Context, channelID int64, body string) error {
	messageID, err := b.client.SendMessage(ctx, channelID, body)
	if err != nil {
		return err
	}
	if err := b.client.AddReaction(ctx, channelID, messageID, b.joinEmoji); err != nil {
		b.logger.Warn("join reaction failed", "channel", channelID, "error", err)
	}
	return b.store.SetScoreboardMessage(ctx, channelID, messageID)
}

// Update satisfies the resolver's scoreboard interface; unreachable channels
// are logged rather than surfaced.
func (b *Board) Update(ctx context.Context) error {
	result, err := b.Refresh(ctx)
	if err != nil {
		return err
	}
	for _, ch := range result.Full {
		b.logger.Warn("scoreboard channel full", "channel", ch.Name, "guild", ch.GuildID)
	}
	for _, ch := range result.Restricted {
		b.logger.Warn("scoreboard channel restricted", "channel", ch.Name, "guild", ch.GuildID)
	}
	return nil
}

// Render formats the standings as a fixed-width two-column table.
func Render(knights, vikings *store.TeamStats) string {
	knightBadge, vikingBadge := "", ""
	switch {
	case knights.Damage() > vikings.Damage():
		knightBadge = " " + winnerBadge
	case vikings.Damage() > knights.Damage():
		vikingBadge = " " + winnerBadge
	}

	var sb strings.Builder
	sb.WriteString("**POM WARS**\n```\n")
	fmt.Fprintf(&sb, "%-10s %14s %14s\n", "",
		emblems[pom.TeamKnights]+" Knights"+knightBadge,
		emblems[pom.TeamVikings]+" Vikings"+vikingBadge)
	fmt.Fprintf(&sb, "%-10s %14d %14d\n", "Damage", knights.Damage(), vikings.Damage())
	fmt.Fprintf(&sb, "%-10s %14d %14d\n", "Attacks", knights.Actions, vikings.Actions)
	fmt.Fprintf(&sb, "%-10s %14s %14s\n", "Favorite", favoriteLabel(knights.Favorite), favoriteLabel(vikings.Favorite))
	fmt.Fprintf(&sb, "%-10s %14d %14d\n", "Members", knights.Population, vikings.Population)
	sb.WriteString("```")
	return sb.String()
}

func favoriteLabel(t pom.ActionType) string {
	if t == "" {
		return "-"
	}
	return strings.ReplaceAll(string(t), "_", " ")
}
