package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/graaaaa/pomwars/internal/chat"
	"github.com/graaaaa/pomwars/internal/pom"
	"github.com/graaaaa/pomwars/internal/store"
)

// HandleReaction processes a reaction-add. Join-emoji reactions in the join
// channel enlist the user; clock-face reactions set their timezone.
func (b *Bot) HandleReaction(ctx context.Context, r chat.Reaction) {
	if r.UserID == b.client.BotUserID() {
		return
	}

	channel, err := b.client.ChannelByID(ctx, r.ChannelID)
	if err != nil {
		b.logger.Error("channel lookup failed", "channel", r.ChannelID, "error", err)
		return
	}
	if channel == nil || channel.Name != b.cfg.JoinChannel {
		return
	}

	switch {
	case r.Emoji == b.cfg.JoinEmoji:
		if err := b.handleJoin(ctx, r); err != nil {
			b.logger.Error("join failed", "user", r.UserID, "guild", r.GuildID, "error", err)
		}
	default:
		if offset, ok := timezoneEmoji[r.Emoji]; ok {
			if err := b.handleTimezone(ctx, r.UserID, offset); err != nil {
				b.logger.Error("timezone update failed", "user", r.UserID, "error", err)
			}
		}
	}
}

func (b *Bot) handleJoin(ctx context.Context, r chat.Reaction) error {
	existing, err := b.store.GetUser(ctx, r.UserID)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return b.enlist(ctx, r)
	case err != nil:
		return err
	default:
		return b.reconcileTeam(ctx, r, existing)
	}
}

// enlist creates the war record for a first-time joiner and applies their
// team role.
func (b *Bot) enlist(ctx context.Context, r chat.Reaction) error {
	team, err := b.teams.Assign(ctx, r.GuildID)
	if err != nil {
		return fmt.Errorf("assign team: %w", err)
	}

	user := pom.User{
		UserID:           r.UserID,
		Timezone:         "+0000",
		Team:             team,
		PlayerLevel:      1,
		AttackLevel:      1,
		HeavyAttackLevel: 1,
		DefendLevel:      1,
	}
	if err := b.store.InsertUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			// A concurrent reaction won the race.
			return nil
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if err := b.applyTeamRole(ctx, r.GuildID, r.UserID, team); err != nil {
		b.logger.Warn("team role assignment failed", "user", r.UserID, "error", err)
	}

	welcome := fmt.Sprintf("⚔️ Welcome to the Pom Wars! You fight for the **%s**. Every pom you log is a strike for your team.", team)
	if err := b.client.SendDirectMessage(ctx, r.UserID, welcome); err != nil && !errors.Is(err, chat.ErrForbidden) {
		b.logger.Warn("welcome DM failed", "user", r.UserID, "error", err)
	}

	if b.board != nil {
		if err := b.board.Update(ctx); err != nil {
			b.logger.Warn("scoreboard update failed", "error", err)
		}
	}
	return nil
}

// reconcileTeam re-joins an existing participant: when exactly one team role
// is applied and it disagrees with storage, the role wins.
func (b *Bot) reconcileTeam(ctx context.Context, r chat.Reaction, user *pom.User) error {
	roles, err := b.client.UserRoles(ctx, r.GuildID, r.UserID)
	if err != nil {
		return fmt.Errorf("read roles: %w", err)
	}

	hasKnight := slices.Contains(roles, b.cfg.KnightRoleName)
	hasViking := slices.Contains(roles, b.cfg.VikingRoleName)
	if hasKnight == hasViking {
		// Zero or both roles: storage stands.
		return nil
	}

	roleTeam := pom.TeamKnights
	if hasViking {
		roleTeam = pom.TeamVikings
	}
	if roleTeam == user.Team {
		return nil
	}
	return b.store.UpdateUserTeam(ctx, r.UserID, roleTeam)
}

func (b *Bot) applyTeamRole(ctx context.Context, guildID, userID int64, team pom.Team) error {
	name := b.cfg.KnightRoleName
	if team == pom.TeamVikings {
		name = b.cfg.VikingRoleName
	}
	if err := b.client.EnsureRole(ctx, guildID, name); err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}
	if err := b.client.AssignRole(ctx, guildID, userID, name); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

func (b *Bot) handleTimezone(ctx context.Context, userID int64, offset string) error {
	err := b.store.UpdateUserTimezone(ctx, userID, offset)
	if errors.Is(err, store.ErrUserNotFound) {
		// Not a participant; nothing to update.
		return nil
	}
	return err
}
