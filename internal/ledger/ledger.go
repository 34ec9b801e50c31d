// Package ledger implements pom bookkeeping: the session/bank lifecycle,
// event administration, and event-goal detection.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/graaaaa/pomwars/internal/pom"
	"github.com/graaaaa/pomwars/internal/store"
)

// Sentinel errors for the ledger package.
var (
	// ErrInvalidCount is returned when a pom count is outside [1, TrackLimit].
	ErrInvalidCount = errors.New("invalid pom count")

	// ErrDescriptionTooLong is returned when a description exceeds the limit.
	ErrDescriptionTooLong = errors.New("description too long")

	// ErrMultilineDescription is returned when a description spans lines
	// and multi-line descriptions are disabled.
	ErrMultilineDescription = errors.New("multi-line description")

	// ErrOverlappingEvents is returned when a new event would overlap
	// an existing one.
	ErrOverlappingEvents = errors.New("overlapping events")
)

// Ledger owns pom bookkeeping on top of the store. The goal-reached latch
// is process-local; it resets on event creation or restart.
type Ledger struct {
	store          *store.Store
	logger         *slog.Logger
	allowMultiline bool

	mu          sync.Mutex
	goalReached bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithMultilineDescriptions allows descriptions that span multiple lines.
func WithMultilineDescriptions(allow bool) Option {
	return func(l *Ledger) { l.allowMultiline = allow }
}

// New creates a Ledger over the store.
func New(s *store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) validateDescription(description string) error {
	if utf8.RuneCountInString(description) > pom.DescriptionLimit {
		return fmt.Errorf("%w: %d runes, limit %d", ErrDescriptionTooLong, utf8.RuneCountInString(description), pom.DescriptionLimit)
	}
	if !l.allowMultiline && strings.ContainsRune(description, '\n') {
		return ErrMultilineDescription
	}
	return nil
}

// GoalNotice reports that an ongoing event's pom goal has just been reached.
type GoalNotice struct {
	Event pom.Event
	Total int
}

// Add inserts count poms into the user's current session and checks the
// event goal. The notice is non-nil the first time an ongoing event's goal
// is reached; subsequent adds stay quiet until the latch resets.
func (l *Ledger) Add(ctx context.Context, userID int64, description string, count int, now time.Time) (*GoalNotice, error) {
	if count < 1 || count > pom.TrackLimit {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCount, count, pom.TrackLimit)
	}
	if err := l.validateDescription(description); err != nil {
		return nil, err
	}

	var desc *string
	if description != "" {
		desc = &description
	}
	if err := l.store.InsertPoms(ctx, userID, desc, count, now); err != nil {
		return nil, fmt.Errorf("add poms: %w", err)
	}

	return l.GoalCheck(ctx, now)
}

// GoalCheck evaluates the ongoing event's pom goal at the given instant.
// Safe to call after any pom-producing operation, including war actions.
func (l *Ledger) GoalCheck(ctx context.Context, now time.Time) (*GoalNotice, error) {
	events, err := l.store.OngoingEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("ongoing events: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	event := events[0]
	total, err := l.store.CountPomsBetween(ctx, event.Start, event.End)
	if err != nil {
		return nil, fmt.Errorf("count event poms: %w", err)
	}
	if total < event.PomGoal {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.goalReached {
		return nil, nil
	}
	l.goalReached = true
	l.logger.Info("event goal reached", "event", event.Name, "goal", event.PomGoal, "total", total)
	return &GoalNotice{Event: event, Total: total}, nil
}

// Bank moves all of the user's current-session poms to the bank.
// Returns the number of poms banked.
func (l *Ledger) Bank(ctx context.Context, userID int64) (int64, error) {
	n, err := l.store.BankPoms(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("bank poms: %w", err)
	}
	return n, nil
}

// Undo removes the user's n most recent poms.
func (l *Ledger) Undo(ctx context.Context, userID int64, n int) (int64, error) {
	if n < 1 || n > pom.TrackLimit {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCount, n, pom.TrackLimit)
	}
	removed, err := l.store.UndoPoms(ctx, userID, n)
	if err != nil {
		return 0, fmt.Errorf("undo poms: %w", err)
	}
	return removed, nil
}

// Reset deletes all of the user's poms within scope.
func (l *Ledger) Reset(ctx context.Context, userID int64, scope pom.Scope) (int64, error) {
	n, err := l.store.DeletePoms(ctx, userID, scope)
	if err != nil {
		return 0, fmt.Errorf("reset poms: %w", err)
	}
	return n, nil
}

// Rename updates the description on all of the user's poms matching old
// within scope. Session/bank membership is never affected.
func (l *Ledger) Rename(ctx context.Context, userID int64, old, new string, scope pom.Scope) (int64, error) {
	if err := l.validateDescription(new); err != nil {
		return 0, err
	}
	n, err := l.store.RenamePoms(ctx, userID, old, new, scope)
	if err != nil {
		return 0, fmt.Errorf("rename poms: %w", err)
	}
	return n, nil
}

// Query returns poms matching the filter.
func (l *Ledger) Query(ctx context.Context, f store.PomFilter) ([]pom.Pom, error) {
	return l.store.QueryPoms(ctx, f)
}

// HowMany counts the user's poms with the given description, across
// session and bank.
func (l *Ledger) HowMany(ctx context.Context, userID int64, description string) (int, error) {
	poms, err := l.store.QueryPoms(ctx, store.PomFilter{
		UserID:      &userID,
		Description: &description,
	})
	if err != nil {
		return 0, fmt.Errorf("query poms: %w", err)
	}
	return len(poms), nil
}

// Total counts all poms logged by anyone in [since, until].
func (l *Ledger) Total(ctx context.Context, since, until time.Time) (int, error) {
	return l.store.CountPomsBetween(ctx, since, until)
}

// CreateEvent validates and stores a new event, rejecting strict overlaps
// with existing events, and resets the goal-reached latch.
func (l *Ledger) CreateEvent(ctx context.Context, name string, goal int, start, end time.Time) (*pom.Event, error) {
	event := pom.Event{Name: name, PomGoal: goal, Start: start, End: end}
	if err := validateEventInput(&event); err != nil {
		return nil, err
	}

	overlapping, err := l.store.OverlappingEvents(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("overlapping events: %w", err)
	}
	if len(overlapping) > 0 {
		names := make([]string, len(overlapping))
		for i, e := range overlapping {
			names[i] = e.Name
		}
		return nil, fmt.Errorf("%w: %s", ErrOverlappingEvents, strings.Join(names, ", "))
	}

	if err := l.store.InsertEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	l.mu.Lock()
	l.goalReached = false
	l.mu.Unlock()

	l.logger.Info("event created", "event", event.Name, "goal", event.PomGoal)
	return &event, nil
}

func validateEventInput(e *pom.Event) error {
	if len(e.Name) > 100 {
		return fmt.Errorf("%w: name exceeds 100 characters", store.ErrInvalidEvent)
	}
	return nil
}

// RemoveEvent deletes the oldest event with the given name. Returns false
// when no event matched.
func (l *Ledger) RemoveEvent(ctx context.Context, name string) (bool, error) {
	return l.store.DeleteOldestEventByName(ctx, name)
}

// Events returns all events ordered by start date.
func (l *Ledger) Events(ctx context.Context) ([]pom.Event, error) {
	return l.store.ListEvents(ctx)
}

// OngoingEvents returns events bracketing t.
func (l *Ledger) OngoingEvents(ctx context.Context, t time.Time) ([]pom.Event, error) {
	return l.store.OngoingEvents(ctx, t)
}

// UpcomingEvents returns events starting after t.
func (l *Ledger) UpcomingEvents(ctx context.Context, t time.Time) ([]pom.Event, error) {
	return l.store.UpcomingEvents(ctx, t)
}
