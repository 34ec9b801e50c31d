// Package bot routes chat commands to the ledger and war engine and surfaces
// their results and failures back to the platform.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/graaaaa/pomwars/internal/chat"
	"github.com/graaaaa/pomwars/internal/clock"
	"github.com/graaaaa/pomwars/internal/config"
	"github.com/graaaaa/pomwars/internal/ledger"
	"github.com/graaaaa/pomwars/internal/scoreboard"
	"github.com/graaaaa/pomwars/internal/store"
	"github.com/graaaaa/pomwars/internal/war"
)

// Bot owns the command surface. One instance serves every guild the chat
// client can see.
type Bot struct {
	cfg      config.Config
	client   chat.Client
	store    *store.Store
	ledger   *ledger.Ledger
	resolver *war.Resolver
	board    *scoreboard.Board
	teams    *war.TeamPolicy
	clk      clock.Clock
	logger   *slog.Logger
	throttle *Throttle
	rng      war.RNG
}

// Option configures a Bot.
type Option func(*Bot)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(b *Bot) { b.clk = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// WithRNG sets the random source (for testing).
func WithRNG(rng war.RNG) Option {
	return func(b *Bot) { b.rng = rng }
}

// WithThrottle replaces the default per-user command throttle.
func WithThrottle(t *Throttle) Option {
	return func(b *Bot) {
		b.throttle.Stop()
		b.throttle = t
	}
}

// New wires a Bot over its collaborators.
func New(cfg config.Config, client chat.Client, s *store.Store, l *ledger.Ledger, r *war.Resolver, board *scoreboard.Board, teams *war.TeamPolicy, opts ...Option) *Bot {
	b := &Bot{
		cfg:      cfg,
		client:   client,
		store:    s,
		ledger:   l,
		resolver: r,
		board:    board,
		teams:    teams,
		clk:      clock.Real{},
		logger:   slog.Default(),
		throttle: NewThrottle(cfg.ThrottleRate, cfg.ThrottleBurst),
		rng:      war.DefaultRNG(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Close releases background resources.
func (b *Bot) Close() {
	b.throttle.Stop()
}

// HandleMessage processes one incoming message. Non-commands and messages
// from this process are ignored.
func (b *Bot) HandleMessage(ctx context.Context, msg chat.Message) {
	if msg.AuthorID == b.client.BotUserID() {
		return
	}
	if !strings.HasPrefix(msg.Content, b.cfg.CommandPrefix) {
		return
	}

	channel, err := b.client.ChannelByID(ctx, msg.ChannelID)
	if err != nil {
		b.logger.Error("channel lookup failed", "channel", msg.ChannelID, "error", err)
		return
	}
	if channel == nil && !b.cfg.RespondToDM {
		return
	}

	fields := strings.Fields(msg.Content)
	name := strings.ToLower(strings.TrimPrefix(fields[0], b.cfg.CommandPrefix))
	if name == "" {
		return
	}
	args := fields[1:]

	if !b.channelAllowed(channel, name) {
		return
	}
	if !b.throttle.Allow(msg.AuthorID) {
		return
	}

	if err := b.dispatch(ctx, msg, channel, name, args); err != nil {
		b.surface(ctx, msg, name, err)
	}
}

// pomCommands are restricted to the configured pom channels when the
// allowlist is non-empty.
var pomCommands = []string{
	"pom", "poms", "poms.show", "poms.rename", "poms.reset",
	"bank", "bank.rename", "undo", "howmany",
	"attack", "defend", "bribe", "actions",
}

func (b *Bot) channelAllowed(channel *chat.Channel, name string) bool {
	if channel == nil || len(b.cfg.PomChannels) == 0 {
		return true
	}
	if !slices.Contains(pomCommands, name) {
		return true
	}
	return slices.Contains(b.cfg.PomChannels, channel.Name)
}

func (b *Bot) dispatch(ctx context.Context, msg chat.Message, channel *chat.Channel, name string, args []string) error {
	switch name {
	case "pom":
		return b.cmdPom(ctx, msg, args)
	case "poms", "poms.show":
		return b.cmdPomsShow(ctx, msg, args)
	case "poms.rename":
		return b.cmdRename(ctx, msg, args, "session")
	case "poms.reset":
		return b.cmdReset(ctx, msg, args)
	case "bank":
		return b.cmdBank(ctx, msg)
	case "bank.rename":
		return b.cmdRename(ctx, msg, args, "bank")
	case "undo":
		return b.cmdUndo(ctx, msg, args)
	case "howmany":
		return b.cmdHowMany(ctx, msg, args)
	case "events":
		return b.cmdEvents(ctx, msg)
	case "fortune":
		return b.cmdFortune(ctx, msg)
	case "help":
		return b.cmdHelp(ctx, msg, args)
	case "total":
		return b.cmdTotal(ctx, msg, channel, args)
	case "create_event":
		return b.cmdCreateEvent(ctx, msg, channel, args)
	case "remove_event":
		return b.cmdRemoveEvent(ctx, msg, channel, args)
	case "attack":
		return b.cmdAttack(ctx, msg, args)
	case "defend":
		return b.cmdWarAction(ctx, msg, "defend", args)
	case "bribe":
		return b.cmdWarAction(ctx, msg, "bribe", nil)
	case "actions":
		return b.cmdActions(ctx, msg, args)
	default:
		// Unknown commands stay quiet; another bot may own the prefix.
		return nil
	}
}

// surface reports a command failure to the user per the error design:
// usage problems get a robot reaction and a clarifying DM, permission
// problems a canned channel reply, everything else an error reaction and a
// mirror to the errors channel.
func (b *Bot) surface(ctx context.Context, msg chat.Message, cmd string, err error) {
	switch classify(err) {
	case kindUsage:
		b.react(ctx, msg, reactionRobot)
		if dmErr := b.client.SendDirectMessage(ctx, msg.AuthorID, userHint(err)); dmErr != nil {
			if errors.Is(dmErr, chat.ErrForbidden) {
				b.react(ctx, msg, reactionWarning)
				return
			}
			b.logger.Error("hint DM failed", "user", msg.AuthorID, "error", dmErr)
		}
	case kindPermission:
		b.react(ctx, msg, reactionRobot)
		if _, sendErr := b.client.SendMessage(ctx, msg.ChannelID, permissionQuip(b.rng)); sendErr != nil {
			b.logger.Error("permission reply failed", "channel", msg.ChannelID, "error", sendErr)
		}
	default:
		b.react(ctx, msg, reactionError)
		b.logger.Error("command failed", "command", cmd, "user", msg.AuthorID, "content", msg.Content, "error", err)
		b.mirrorError(ctx, cmd, err)
	}
}

func (b *Bot) react(ctx context.Context, msg chat.Message, emoji string) {
	if err := b.client.AddReaction(ctx, msg.ChannelID, msg.ID, emoji); err != nil {
		b.logger.Warn("reaction failed", "message", msg.ID, "error", err)
	}
}

func (b *Bot) mirrorError(ctx context.Context, cmd string, err error) {
	if b.cfg.ErrorChannel == "" {
		return
	}
	channels, listErr := b.client.ChannelsNamed(ctx, b.cfg.ErrorChannel)
	if listErr != nil {
		b.logger.Error("error channel lookup failed", "error", listErr)
		return
	}
	body := fmt.Sprintf("`%s%s` failed: %v", b.cfg.CommandPrefix, cmd, err)
	for _, ch := range channels {
		if _, sendErr := b.client.SendMessage(ctx, ch.ID, body); sendErr != nil {
			b.logger.Error("error mirror failed", "channel", ch.ID, "error", sendErr)
		}
	}
}

// reply answers a ledger command: by DM unless pom replies are public.
// A blocked DM degrades to a warning reaction.
func (b *Bot) reply(ctx context.Context, msg chat.Message, text string) error {
	if b.cfg.PublicPomReplies {
		return b.channelReply(ctx, msg, text)
	}
	err := b.client.SendDirectMessage(ctx, msg.AuthorID, text)
	if errors.Is(err, chat.ErrForbidden) {
		b.react(ctx, msg, reactionWarning)
		return nil
	}
	return err
}

// channelReply answers in the channel the command came from.
func (b *Bot) channelReply(ctx context.Context, msg chat.Message, text string) error {
	_, err := b.client.SendMessage(ctx, msg.ChannelID, text)
	return err
}

// requireAdmin checks the author's roles against the configured admin list.
func (b *Bot) requireAdmin(ctx context.Context, msg chat.Message, channel *chat.Channel) error {
	if channel == nil {
		return &permissionError{msg: "admin commands only work in a guild channel"}
	}
	roles, err := b.client.UserRoles(ctx, channel.GuildID, msg.AuthorID)
	if err != nil {
		return fmt.Errorf("read roles: %w", err)
	}
	for _, r := range roles {
		if slices.Contains(b.cfg.AdminRoles, r) {
			return nil
		}
	}
	return &permissionError{msg: "missing admin role"}
}

// permissionQuip picks one of the canned replies for unauthorized commands.
var permissionQuips = []string{
	"Nice try. The war council has not approved you for that.",
	"You wave your credentials around. Nobody is fooled.",
	"That command is above your pay grade, soldier.",
	"A guard politely but firmly blocks your path.",
}

func permissionQuip(rng war.RNG) string {
	return permissionQuips[int(rng.Float64()*float64(len(permissionQuips)))%len(permissionQuips)]
}
