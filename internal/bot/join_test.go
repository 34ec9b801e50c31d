package bot

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/graaaaa/pomwars/internal/chat"
	"github.com/graaaaa/pomwars/internal/config"
	"github.com/graaaaa/pomwars/internal/pom"
)

const joinChannelID = int64(5)

func newJoinFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, nil)
	f.client.AddChannel(chat.Channel{ID: joinChannelID, GuildID: testGuildID, Name: "join-the-war"})
	return f
}

func joinReaction(userID int64, emoji string) chat.Reaction {
	return chat.Reaction{
		GuildID:   testGuildID,
		ChannelID: joinChannelID,
		MessageID: 1,
		UserID:    userID,
		Emoji:     emoji,
	}
}

func TestJoinEnlistsNewUser(t *testing.T) {
	f := newJoinFixture(t)
	ctx := context.Background()

	f.bot.HandleReaction(ctx, joinReaction(1, "⚔️"))

	user, err := f.store.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if !user.Team.Valid() {
		t.Errorf("team = %q, want a valid team", user.Team)
	}
	if user.Timezone != "+0000" {
		t.Errorf("timezone = %q, want +0000", user.Timezone)
	}
	if user.PlayerLevel != 1 || user.HeavyAttackLevel != 1 || user.DefendLevel != 1 {
		t.Errorf("levels = %+v, want all 1", user)
	}

	if got := lastDM(t, f, 1); !strings.Contains(got, string(user.Team)) {
		t.Errorf("welcome DM = %q, want team name", got)
	}

	roles, err := f.client.UserRoles(ctx, testGuildID, 1)
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if !slices.Contains(roles, string(user.Team)) {
		t.Errorf("roles = %v, want team role applied", roles)
	}

	// Joining refreshes the scoreboard in the join channel.
	if msgs := f.client.ChannelMessages(joinChannelID); len(msgs) != 1 {
		t.Errorf("join channel has %d messages, want the scoreboard", len(msgs))
	}
}

func TestJoinBalancesTeams(t *testing.T) {
	f := newJoinFixture(t)
	ctx := context.Background()

	f.join(t, 10, pom.TeamKnights)
	f.join(t, 11, pom.TeamKnights)
	f.join(t, 12, pom.TeamVikings)

	f.bot.HandleReaction(ctx, joinReaction(1, "⚔️"))

	user, err := f.store.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Team != pom.TeamVikings {
		t.Errorf("team = %s, want Vikings (smaller)", user.Team)
	}
}

func TestRejoinRoleConflictUpdatesTeam(t *testing.T) {
	f := newJoinFixture(t)
	ctx := context.Background()

	f.join(t, 1, pom.TeamKnights)
	f.client.SetRoles(testGuildID, 1, "Vikings")

	f.bot.HandleReaction(ctx, joinReaction(1, "⚔️"))

	user, err := f.store.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Team != pom.TeamVikings {
		t.Errorf("team = %s, want Vikings after role reconcile", user.Team)
	}
}

func TestRejoinKeepsTeamOnAmbiguousRoles(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
	}{
		{"no team roles", []string{"General"}},
		{"both team roles", []string{"Knights", "Vikings"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newJoinFixture(t)
			ctx := context.Background()

			f.join(t, 1, pom.TeamKnights)
			f.client.SetRoles(testGuildID, 1, tt.roles...)

			f.bot.HandleReaction(ctx, joinReaction(1, "⚔️"))

			user, err := f.store.GetUser(ctx, 1)
			if err != nil {
				t.Fatalf("get user: %v", err)
			}
			if user.Team != pom.TeamKnights {
				t.Errorf("team = %s, want Knights kept", user.Team)
			}
		})
	}
}

func TestTimezoneReaction(t *testing.T) {
	f := newJoinFixture(t)
	ctx := context.Background()

	f.join(t, 1, pom.TeamKnights)

	f.bot.HandleReaction(ctx, joinReaction(1, "🕑"))

	user, err := f.store.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Timezone != "+0200" {
		t.Errorf("timezone = %q, want +0200", user.Timezone)
	}

	f.bot.HandleReaction(ctx, joinReaction(1, "🕞"))
	user, err = f.store.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Timezone != "-0300" {
		t.Errorf("timezone = %q, want -0300", user.Timezone)
	}
}

func TestTimezoneReactionForNonParticipant(t *testing.T) {
	f := newJoinFixture(t)

	// Must not create a user or fail loudly.
	f.bot.HandleReaction(context.Background(), joinReaction(1, "🕑"))

	if _, err := f.store.GetUser(context.Background(), 1); err == nil {
		t.Error("timezone reaction created a user")
	}
}

func TestReactionOutsideJoinChannelIgnored(t *testing.T) {
	f := newJoinFixture(t)
	ctx := context.Background()

	r := joinReaction(1, "⚔️")
	r.ChannelID = pomChannel

	f.bot.HandleReaction(ctx, r)

	if _, err := f.store.GetUser(ctx, 1); err == nil {
		t.Error("reaction outside the join channel enlisted a user")
	}
}

func TestForcedGuildAssignment(t *testing.T) {
	f := newFixture(t, nil, func(cfg *config.Config) {
		cfg.VikingOnlyGuilds = []int64{testGuildID}
	})
	f.client.AddChannel(chat.Channel{ID: joinChannelID, GuildID: testGuildID, Name: "join-the-war"})
	ctx := context.Background()

	f.bot.HandleReaction(ctx, joinReaction(1, "⚔️"))

	user, err := f.store.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Team != pom.TeamVikings {
		t.Errorf("team = %s, want forced Vikings", user.Team)
	}
}
