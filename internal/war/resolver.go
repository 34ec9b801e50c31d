package war

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/graaaaa/pomwars/internal/clock"
	"github.com/graaaaa/pomwars/internal/content"
	"github.com/graaaaa/pomwars/internal/pom"
	"github.com/graaaaa/pomwars/internal/store"
)

// ErrDescriptionTooLong is returned when an action description exceeds the limit.
var ErrDescriptionTooLong = errors.New("description too long")

// Scoreboard is notified after a successful attack changes team totals.
type Scoreboard interface {
	Update(ctx context.Context) error
}

// Resolver orchestrates a war action: record the pom, roll for success,
// select flavor content, compute defended damage, and append the action row.
type Resolver struct {
	store      *store.Store
	content    *content.Library
	rng        RNG
	scoreboard Scoreboard
	logger     *slog.Logger

	baseDamageNormal float64
	baseDamageHeavy  float64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithScoreboard sets the scoreboard to notify on successful attacks.
func WithScoreboard(sb Scoreboard) ResolverOption {
	return func(r *Resolver) { r.scoreboard = sb }
}

// WithRNG sets the random source (for testing).
func WithRNG(rng RNG) ResolverOption {
	return func(r *Resolver) { r.rng = rng }
}

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// WithBaseDamage overrides the base damage for normal and heavy attacks.
func WithBaseDamage(normal, heavy float64) ResolverOption {
	return func(r *Resolver) {
		r.baseDamageNormal = normal
		r.baseDamageHeavy = heavy
	}
}

// NewResolver creates a Resolver over the store and content library.
func NewResolver(s *store.Store, lib *content.Library, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:            s,
		content:          lib,
		rng:              DefaultRNG(),
		logger:           slog.Default(),
		baseDamageNormal: 10,
		baseDamageHeavy:  25,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Outcome is the result of a resolved action.
type Outcome struct {
	Action              pom.Action
	Message             string // rendered flavor body; empty on a miss
	DefensiveMultiplier float64
}

// Missed reports whether the roll failed.
func (o *Outcome) Missed() bool {
	return !o.Action.WasSuccessful
}

// Resolve runs one war action for a participant at the given instant.
// Attacks and defends always record a pom; bribes never do.
func (r *Resolver) Resolve(ctx context.Context, user *pom.User, kind pom.ActionType, description string, now time.Time) (*Outcome, error) {
	if utf8.RuneCountInString(description) > pom.DescriptionLimit {
		return nil, fmt.Errorf("%w: %d runes, limit %d", ErrDescriptionTooLong, utf8.RuneCountInString(description), pom.DescriptionLimit)
	}

	var desc *string
	if description != "" {
		desc = &description
	}

	switch kind {
	case pom.ActionBribe:
		return r.resolveBribe(ctx, user, now)
	case pom.ActionNormalAttack, pom.ActionHeavyAttack:
		return r.resolveAttack(ctx, user, kind, desc, now)
	case pom.ActionDefend:
		return r.resolveDefend(ctx, user, desc, now)
	default:
		return nil, fmt.Errorf("resolve: unsupported action kind %s", kind)
	}
}

// resolveBribe picks a bribe by weight. Bribes always succeed and skip the
// probability roll entirely.
func (r *Resolver) resolveBribe(ctx context.Context, user *pom.User, now time.Time) (*Outcome, error) {
	item, err := r.content.Pick(pom.ActionBribe, false, r.rng)
	if err != nil {
		return nil, fmt.Errorf("pick bribe: %w", err)
	}

	action := pom.Action{
		UserID:        user.UserID,
		Team:          user.Team,
		Type:          pom.ActionBribe,
		WasSuccessful: true,
		TimeSet:       now,
	}
	if err := r.store.InsertAction(ctx, &action); err != nil {
		return nil, fmt.Errorf("record bribe: %w", err)
	}

	return &Outcome{Action: action, Message: item.Body}, nil
}

func (r *Resolver) resolveAttack(ctx context.Context, user *pom.User, kind pom.ActionType, desc *string, now time.Time) (*Outcome, error) {
	chance, err := r.successChance(ctx, user, kind == pom.ActionHeavyAttack, now)
	if err != nil {
		return nil, err
	}

	action := pom.Action{
		UserID:  user.UserID,
		Team:    user.Team,
		Type:    kind,
		TimeSet: now,
	}

	if r.rng.Float64() >= chance {
		// Miss. The pom still counts; the action records the failure.
		if err := r.store.InsertActionWithPom(ctx, &action, desc); err != nil {
			return nil, fmt.Errorf("record miss: %w", err)
		}
		return &Outcome{Action: action}, nil
	}

	critical := r.rng.Float64() < BaseChanceForCritical
	item, err := r.content.Pick(kind, critical, r.rng)
	if err != nil {
		return nil, fmt.Errorf("pick attack: %w", err)
	}

	since := now.Add(-DefendDuration)
	defenders, err := r.store.SuccessfulDefenders(ctx, user.Team.Opposite(), since, now)
	if err != nil {
		return nil, fmt.Errorf("fetch defenders: %w", err)
	}
	defensive := DefensiveMultiplier(defenders)

	base := r.baseDamageNormal
	if kind == pom.ActionHeavyAttack {
		base = r.baseDamageHeavy
	}

	action.WasSuccessful = true
	action.WasCritical = pom.BoolPtr(critical)
	action.ItemsDropped = item.Name
	action.RawDamage = RawDamage(base, item.DamageMultiplier, defensive)

	if err := r.store.InsertActionWithPom(ctx, &action, desc); err != nil {
		return nil, fmt.Errorf("record attack: %w", err)
	}

	if r.scoreboard != nil {
		if err := r.scoreboard.Update(ctx); err != nil {
			r.logger.Warn("scoreboard update failed", "error", err)
		}
	}

	return &Outcome{Action: action, Message: item.Body, DefensiveMultiplier: defensive}, nil
}

func (r *Resolver) resolveDefend(ctx context.Context, user *pom.User, desc *string, now time.Time) (*Outcome, error) {
	chance, err := r.successChance(ctx, user, false, now)
	if err != nil {
		return nil, err
	}

	action := pom.Action{
		UserID:  user.UserID,
		Team:    user.Team,
		Type:    pom.ActionDefend,
		TimeSet: now,
	}

	if r.rng.Float64() >= chance {
		if err := r.store.InsertActionWithPom(ctx, &action, desc); err != nil {
			return nil, fmt.Errorf("record miss: %w", err)
		}
		return &Outcome{Action: action}, nil
	}

	item, err := r.content.Pick(pom.ActionDefend, false, r.rng)
	if err != nil {
		return nil, fmt.Errorf("pick defend: %w", err)
	}

	action.WasSuccessful = true
	if err := r.store.InsertActionWithPom(ctx, &action, desc); err != nil {
		return nil, fmt.Errorf("record defend: %w", err)
	}

	return &Outcome{Action: action, Message: item.Body}, nil
}

// successChance reads today's action count (UTC day) and, for heavy attacks,
// the pity streak, then evaluates the probability curve.
func (r *Resolver) successChance(ctx context.Context, user *pom.User, heavy bool, now time.Time) (float64, error) {
	since, until := clock.UTCDay(now)
	n, err := r.store.CountUserActionsBetween(ctx, user.UserID, since, until.Add(-time.Nanosecond))
	if err != nil {
		return 0, fmt.Errorf("count today's actions: %w", err)
	}

	misses := 0
	if heavy {
		misses, err = r.store.HeavyMissStreak(ctx, user.UserID)
		if err != nil {
			return 0, fmt.Errorf("heavy miss streak: %w", err)
		}
	}

	return SuccessChance(n, heavy, user.HeavyAttackLevel, misses), nil
}
