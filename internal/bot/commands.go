package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/graaaaa/pomwars/internal/chat"
	"github.com/graaaaa/pomwars/internal/ledger"
	"github.com/graaaaa/pomwars/internal/pom"
	"github.com/graaaaa/pomwars/internal/store"
	"github.com/graaaaa/pomwars/internal/war"
)

func (b *Bot) cmdPom(ctx context.Context, msg chat.Message, args []string) error {
	count := 1
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			count = n
			args = args[1:]
		}
	}
	description := strings.Join(args, " ")

	now := b.clk.Now()
	notice, err := b.ledger.Add(ctx, msg.AuthorID, description, count, now)
	if err != nil {
		return err
	}

	text := "Pom logged."
	if count > 1 {
		text = fmt.Sprintf("%d poms logged.", count)
	}
	if description != "" {
		text += fmt.Sprintf(" (%s)", description)
	}
	if err := b.reply(ctx, msg, text); err != nil {
		return err
	}

	return b.announceGoal(ctx, msg.ChannelID, notice)
}

// announceGoal posts the one-shot goal celebration to the caller's channel.
func (b *Bot) announceGoal(ctx context.Context, channelID int64, notice *ledger.GoalNotice) error {
	if notice == nil {
		return nil
	}
	body := fmt.Sprintf("🎉 **%s**: we've reached our goal of %d poms!", notice.Event.Name, notice.Event.PomGoal)
	if _, err := b.client.SendMessage(ctx, channelID, body); err != nil {
		return fmt.Errorf("announce goal: %w", err)
	}
	return nil
}

func (b *Bot) cmdPomsShow(ctx context.Context, msg chat.Message, args []string) error {
	filter := store.PomFilter{UserID: &msg.AuthorID}
	if len(args) > 0 {
		description := strings.Join(args, " ")
		filter.Description = &description
	}

	poms, err := b.ledger.Query(ctx, filter)
	if err != nil {
		return err
	}

	var session, banked []pom.Pom
	for _, p := range poms {
		if p.CurrentSession {
			session = append(session, p)
		} else {
			banked = append(banked, p)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current session: %d pom%s\n", len(session), plural(len(session)))
	for _, line := range describeGroups(session) {
		sb.WriteString("  • " + line + "\n")
	}
	fmt.Fprintf(&sb, "Banked: %d pom%s", len(banked), plural(len(banked)))
	return b.reply(ctx, msg, sb.String())
}

// describeGroups collapses poms into "description ×n" lines, ordered by
// first appearance.
func describeGroups(poms []pom.Pom) []string {
	counts := make(map[string]int)
	var order []string
	for _, p := range poms {
		desc := "(no description)"
		if p.Description != nil {
			desc = *p.Description
		}
		if counts[desc] == 0 {
			order = append(order, desc)
		}
		counts[desc]++
	}

	lines := make([]string, len(order))
	for i, desc := range order {
		lines[i] = fmt.Sprintf("%s ×%d", desc, counts[desc])
	}
	return lines
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func (b *Bot) cmdRename(ctx context.Context, msg chat.Message, args []string, scope pom.Scope) error {
	if len(args) != 2 {
		return usagef("Rename takes exactly two arguments: `old new`.")
	}
	n, err := b.ledger.Rename(ctx, msg.AuthorID, args[0], args[1], scope)
	if err != nil {
		return err
	}
	return b.reply(ctx, msg, fmt.Sprintf("Renamed %d pom%s.", n, plural(int(n))))
}

func (b *Bot) cmdReset(ctx context.Context, msg chat.Message, args []string) error {
	scope := pom.ScopeSession
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "session":
			scope = pom.ScopeSession
		case "bank":
			scope = pom.ScopeBank
		case "all":
			scope = pom.ScopeAll
		default:
			return usagef("Reset scope is one of `session`, `bank`, `all`.")
		}
	}
	n, err := b.ledger.Reset(ctx, msg.AuthorID, scope)
	if err != nil {
		return err
	}
	return b.reply(ctx, msg, fmt.Sprintf("Removed %d pom%s.", n, plural(int(n))))
}

func (b *Bot) cmdBank(ctx context.Context, msg chat.Message) error {
	n, err := b.ledger.Bank(ctx, msg.AuthorID)
	if err != nil {
		return err
	}
	return b.reply(ctx, msg, fmt.Sprintf("%d pom%s banked.", n, plural(int(n))))
}

func (b *Bot) cmdUndo(ctx context.Context, msg chat.Message, args []string) error {
	n := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return usagef("%q is not a number of poms.", args[0])
		}
		n = parsed
	}
	removed, err := b.ledger.Undo(ctx, msg.AuthorID, n)
	if err != nil {
		return err
	}
	return b.reply(ctx, msg, fmt.Sprintf("Removed %d pom%s.", removed, plural(int(removed))))
}

func (b *Bot) cmdHowMany(ctx context.Context, msg chat.Message, args []string) error {
	if len(args) == 0 {
		return usagef("How many of what? Give me a description.")
	}
	description := strings.Join(args, " ")
	n, err := b.ledger.HowMany(ctx, msg.AuthorID, description)
	if err != nil {
		return err
	}
	return b.reply(ctx, msg, fmt.Sprintf("You have logged %d pom%s of %q.", n, plural(n), description))
}

func (b *Bot) cmdEvents(ctx context.Context, msg chat.Message) error {
	now := b.clk.Now()
	ongoing, err := b.ledger.OngoingEvents(ctx, now)
	if err != nil {
		return err
	}
	upcoming, err := b.ledger.UpcomingEvents(ctx, now)
	if err != nil {
		return err
	}

	if len(ongoing) == 0 && len(upcoming) == 0 {
		return b.channelReply(ctx, msg, "No events on the calendar.")
	}

	var sb strings.Builder
	for _, e := range ongoing {
		fmt.Fprintf(&sb, "▶ **%s** — goal %d poms, until %s\n", e.Name, e.PomGoal, e.End.Format("Jan 2"))
	}
	for _, e := range upcoming {
		fmt.Fprintf(&sb, "• **%s** — goal %d poms, %s to %s\n", e.Name, e.PomGoal, e.Start.Format("Jan 2"), e.End.Format("Jan 2"))
	}
	return b.channelReply(ctx, msg, strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) cmdTotal(ctx context.Context, msg chat.Message, channel *chat.Channel, args []string) error {
	if err := b.requireAdmin(ctx, msg, channel); err != nil {
		return err
	}

	now := b.clk.Now()
	since, until := time.Unix(0, 0).UTC(), now
	rangeLabel := "all time"
	if len(args) > 0 {
		var err error
		since, until, err = parseDateRange(args, now)
		if err != nil {
			return err
		}
		rangeLabel = fmt.Sprintf("%s to %s", since.Format("Jan 2"), until.AddDate(0, 0, -1).Format("Jan 2"))
		until = until.Add(-time.Nanosecond)
	}

	total, err := b.ledger.Total(ctx, since, until)
	if err != nil {
		return err
	}
	return b.channelReply(ctx, msg, fmt.Sprintf("%d pom%s logged (%s).", total, plural(total), rangeLabel))
}

func (b *Bot) cmdCreateEvent(ctx context.Context, msg chat.Message, channel *chat.Channel, args []string) error {
	if err := b.requireAdmin(ctx, msg, channel); err != nil {
		return err
	}
	if len(args) < 6 {
		return usagef("Usage: `create_event <name> <goal> <month> <day> <month> <day>`.")
	}

	name := strings.Join(args[:len(args)-5], " ")
	goal, err := strconv.Atoi(args[len(args)-5])
	if err != nil || goal <= 0 {
		return usagef("%q is not a positive pom goal.", args[len(args)-5])
	}
	start, end, err := parseDateRange(args[len(args)-4:], b.clk.Now())
	if err != nil {
		return err
	}

	event, err := b.ledger.CreateEvent(ctx, name, goal, start, end)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Event **%s** created: %d poms, %s to %s.",
		event.Name, event.PomGoal, event.Start.Format("Jan 2"), event.End.AddDate(0, 0, -1).Format("Jan 2"))
	return b.channelReply(ctx, msg, body)
}

func (b *Bot) cmdRemoveEvent(ctx context.Context, msg chat.Message, channel *chat.Channel, args []string) error {
	if err := b.requireAdmin(ctx, msg, channel); err != nil {
		return err
	}
	if len(args) == 0 {
		return usagef("Which event? Give me a name.")
	}
	name := strings.Join(args, " ")
	removed, err := b.ledger.RemoveEvent(ctx, name)
	if err != nil {
		return err
	}
	if !removed {
		return usagef("No event named %q.", name)
	}
	return b.channelReply(ctx, msg, fmt.Sprintf("Event **%s** removed.", name))
}

// participant loads the war record for the message author.
func (b *Bot) participant(ctx context.Context, userID int64) (*pom.User, error) {
	user, err := b.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, usagef("You haven't joined the war yet. React on the scoreboard in #%s to enlist.", b.cfg.JoinChannel)
	}
	return user, err
}

func (b *Bot) cmdAttack(ctx context.Context, msg chat.Message, args []string) error {
	kind := pom.ActionNormalAttack
	if len(args) > 0 && strings.EqualFold(args[0], "heavy") {
		kind = pom.ActionHeavyAttack
		args = args[1:]
	}
	return b.runWarAction(ctx, msg, kind, strings.Join(args, " "))
}

func (b *Bot) cmdWarAction(ctx context.Context, msg chat.Message, name string, args []string) error {
	kind := pom.ActionDefend
	if name == "bribe" {
		kind = pom.ActionBribe
	}
	return b.runWarAction(ctx, msg, kind, strings.Join(args, " "))
}

func (b *Bot) runWarAction(ctx context.Context, msg chat.Message, kind pom.ActionType, description string) error {
	user, err := b.participant(ctx, msg.AuthorID)
	if err != nil {
		return err
	}

	now := b.clk.Now()
	outcome, err := b.resolver.Resolve(ctx, user, kind, description, now)
	if err != nil {
		return err
	}

	if err := b.channelReply(ctx, msg, renderOutcome(kind, outcome)); err != nil {
		return err
	}

	if kind == pom.ActionBribe {
		return nil
	}

	// Attacks and defends log a pom, so the event goal may have moved.
	notice, err := b.ledger.GoalCheck(ctx, now)
	if err != nil {
		return err
	}
	return b.announceGoal(ctx, msg.ChannelID, notice)
}

func renderOutcome(kind pom.ActionType, outcome *war.Outcome) string {
	if outcome.Missed() {
		if kind == pom.ActionDefend {
			return "💨 Your defence fell apart. The pom still counts."
		}
		return "💨 Your attack missed! The pom still counts."
	}

	switch kind {
	case pom.ActionBribe:
		return outcome.Message
	case pom.ActionDefend:
		return outcome.Message + "\n🛡️ Your team is defended for the next 30 minutes."
	default:
		prefix := "🎯 "
		if outcome.Action.WasCritical != nil && *outcome.Action.WasCritical {
			prefix = "💥 **CRITICAL!** "
		}
		return fmt.Sprintf("%s%s\nYou dealt %s damage to the %s!",
			prefix, outcome.Message, outcome.Action.DamageString(), outcome.Action.Team.Opposite())
	}
}

func (b *Bot) cmdActions(ctx context.Context, msg chat.Message, args []string) error {
	now := b.clk.Now()
	if len(args) == 0 {
		args = []string{"today"}
	}
	since, until, err := parseDateRange(args, now)
	if err != nil {
		return err
	}

	// The range end is an exclusive midnight; the store compares inclusively.
	until = until.Add(-time.Nanosecond)
	actions, err := b.store.QueryActions(ctx, store.ActionFilter{
		UserID: &msg.AuthorID,
		Since:  &since,
		Until:  &until,
	})
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		return b.reply(ctx, msg, "No actions in that range.")
	}

	var sb strings.Builder
	var totalDamage int
	for _, a := range actions {
		mark := "❌"
		if a.WasSuccessful {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s", mark, strings.ReplaceAll(string(a.Type), "_", " "))
		if a.RawDamage > 0 {
			fmt.Fprintf(&sb, " — %s damage", a.DamageString())
			totalDamage += a.RawDamage
		}
		fmt.Fprintf(&sb, " (%s)\n", a.TimeSet.Format("Jan 2 15:04"))
	}
	fmt.Fprintf(&sb, "%d action%s, %.2f total damage.", len(actions), plural(len(actions)), float64(totalDamage)/100)
	return b.reply(ctx, msg, sb.String())
}
