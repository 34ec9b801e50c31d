package bot

import (
	"errors"
	"fmt"

	"github.com/graaaaa/pomwars/internal/ledger"
	"github.com/graaaaa/pomwars/internal/store"
	"github.com/graaaaa/pomwars/internal/war"
)

// Reaction emoji signalling command outcomes.
const (
	reactionRobot   = "🤖"
	reactionWarning = "⚠️"
	reactionError   = "❌"
)

// usageError marks bad user input. Surfaced with a robot reaction and a
// clarifying DM; never logged as an error.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// permissionError marks a command the user's roles do not allow.
type permissionError struct {
	msg string
}

func (e *permissionError) Error() string { return e.msg }

// errKind buckets a command failure for surfacing per the error design.
type errKind int

const (
	kindInternal errKind = iota
	kindUsage
	kindPermission
)

func classify(err error) errKind {
	var ue *usageError
	var pe *permissionError
	switch {
	case errors.As(err, &ue):
		return kindUsage
	case errors.As(err, &pe):
		return kindPermission
	case errors.Is(err, ledger.ErrInvalidCount),
		errors.Is(err, ledger.ErrDescriptionTooLong),
		errors.Is(err, ledger.ErrMultilineDescription),
		errors.Is(err, ledger.ErrOverlappingEvents),
		errors.Is(err, war.ErrDescriptionTooLong),
		errors.Is(err, store.ErrInvalidEvent):
		return kindUsage
	default:
		return kindInternal
	}
}

// userHint renders the clarifying text DMed to the user for a usage failure.
func userHint(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInvalidCount):
		return fmt.Sprintf("Pom counts go from 1 to 10. (%v)", err)
	case errors.Is(err, ledger.ErrDescriptionTooLong), errors.Is(err, war.ErrDescriptionTooLong):
		return "Keep descriptions to 30 characters or fewer."
	case errors.Is(err, ledger.ErrMultilineDescription):
		return "One line per description, please."
	case errors.Is(err, ledger.ErrOverlappingEvents):
		return fmt.Sprintf("Found overlapping events: %s", overlapNames(err))
	default:
		return err.Error()
	}
}

func overlapNames(err error) string {
	msg := err.Error()
	// The sentinel wraps the names after the final ": ".
	for i := len(msg) - 2; i >= 0; i-- {
		if msg[i] == ':' {
			return msg[i+2:]
		}
	}
	return msg
}
