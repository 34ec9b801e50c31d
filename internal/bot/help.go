package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/graaaaa/pomwars/internal/chat"
)

var helpTopics = map[string]string{
	"pom":          "`pom [N] [description]` — log N poms (default 1) into your current session.",
	"poms":         "`poms [description]` — show your session and banked poms, optionally filtered.",
	"poms.rename":  "`poms.rename <old> <new>` — rename matching session poms.",
	"poms.reset":   "`poms.reset [session|bank|all]` — delete your poms in the given scope.",
	"bank":         "`bank` — move your current session into the bank.",
	"bank.rename":  "`bank.rename <old> <new>` — rename matching banked poms.",
	"undo":         "`undo [N]` — remove your N most recent poms (default 1).",
	"howmany":      "`howmany <description>` — count your poms with that description.",
	"events":       "`events` — list ongoing and upcoming events.",
	"fortune":      "`fortune` — consult the war oracle.",
	"total":        "`total [date range]` — (admin) count everyone's poms.",
	"create_event": "`create_event <name> <goal> <month> <day> <month> <day>` — (admin) schedule an event.",
	"remove_event": "`remove_event <name>` — (admin) delete the oldest event with that name.",
	"attack":       "`attack [heavy] [description]` — log a pom as a strike at the enemy.",
	"defend":       "`defend [description]` — log a pom and shield your team for 30 minutes.",
	"bribe":        "`bribe` — slip the war gods something. No pom, no roll.",
	"actions":      "`actions [today|yesterday|<date range>]` — review your war record.",
}

func (b *Bot) cmdHelp(ctx context.Context, msg chat.Message, args []string) error {
	if len(args) > 0 {
		topic, ok := helpTopics[strings.ToLower(args[0])]
		if !ok {
			return usagef("No help for %q.", args[0])
		}
		return b.dmOrWarn(ctx, msg, topic)
	}

	names := make([]string, 0, len(helpTopics))
	for name := range helpTopics {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("**Pom Wars commands**\n")
	for _, name := range names {
		sb.WriteString(helpTopics[name] + "\n")
	}
	fmt.Fprintf(&sb, "Prefix every command with `%s`.", b.cfg.CommandPrefix)
	return b.dmOrWarn(ctx, msg, sb.String())
}

// dmOrWarn DMs the user, degrading to a warning reaction when DMs are blocked.
func (b *Bot) dmOrWarn(ctx context.Context, msg chat.Message, text string) error {
	err := b.client.SendDirectMessage(ctx, msg.AuthorID, text)
	if err == nil {
		return nil
	}
	b.react(ctx, msg, reactionWarning)
	return nil
}

var fortunes = []string{
	"The pomodoro you avoid is the one that would have won the war.",
	"A banked pom weighs twice as much as a promised one.",
	"Your next heavy attack will land. Probably. Eventually.",
	"The enemy rests. You, clearly, do not.",
	"Twenty-five minutes of focus beats two hours of heroics.",
	"The defence you raise today shields a teammate you will never meet.",
	"Beware the sixth action of the day.",
}

func (b *Bot) cmdFortune(ctx context.Context, msg chat.Message) error {
	f := fortunes[int(b.rng.Float64()*float64(len(fortunes)))%len(fortunes)]
	return b.channelReply(ctx, msg, "🔮 "+f)
}
