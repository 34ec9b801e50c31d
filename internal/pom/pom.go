// Package pom provides the shared domain model for the Pom Wars bot.
// This package is used by the ledger, war, scoreboard, and store packages.
package pom

import (
	"fmt"
	"time"
)

// DescriptionLimit is the maximum length of a pom or action description.
const DescriptionLimit = 30

// TrackLimit is the maximum number of poms a single command may add or undo.
const TrackLimit = 10

// Team is one of the two war factions.
type Team string

// Team constants.
const (
	TeamKnights Team = "Knights"
	TeamVikings Team = "Vikings"
)

// Opposite returns the opposing team.
func (t Team) Opposite() Team {
	if t == TeamKnights {
		return TeamVikings
	}
	return TeamKnights
}

// Valid reports whether t is a known team.
func (t Team) Valid() bool {
	return t == TeamKnights || t == TeamVikings
}

// ActionType classifies a war action.
type ActionType string

// Action type constants.
const (
	ActionNormalAttack ActionType = "normal_attack"
	ActionHeavyAttack  ActionType = "heavy_attack"
	ActionDefend       ActionType = "defend"
	ActionBribe        ActionType = "bribe"
	ActionTimer        ActionType = "timer"
)

// ActionTypes lists every action type, in scoreboard display order.
var ActionTypes = []ActionType{
	ActionNormalAttack,
	ActionHeavyAttack,
	ActionDefend,
	ActionBribe,
	ActionTimer,
}

// IsAttack reports whether t deals damage.
func (t ActionType) IsAttack() bool {
	return t == ActionNormalAttack || t == ActionHeavyAttack
}

// Scope selects which poms an operation touches.
type Scope string

// Scope constants.
const (
	ScopeSession Scope = "session"
	ScopeBank    Scope = "bank"
	ScopeAll     Scope = "all"
)

// Pom is a single logged 25-minute work interval.
type Pom struct {
	ID             int64
	UserID         int64
	Description    *string
	TimeSet        time.Time
	CurrentSession bool
}

// Event is a time-bounded community pom goal.
type Event struct {
	ID      int64
	Name    string
	PomGoal int
	Start   time.Time
	End     time.Time
}

// Ongoing reports whether the event brackets t.
func (e Event) Ongoing(t time.Time) bool {
	return !t.Before(e.Start) && !t.After(e.End)
}

// Overlaps reports whether the open intervals of two events intersect.
// Touching at a single instant is not an overlap.
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}

// User is a war participant for the current season.
type User struct {
	UserID           int64
	Timezone         string // "%z" style offset, e.g. "+0200"; display only
	Team             Team
	Inventory        string
	PlayerLevel      int
	AttackLevel      int
	HeavyAttackLevel int // 1..5
	DefendLevel      int // 1..5
}

// Action is an append-only record of a war move.
type Action struct {
	ID            int64
	UserID        int64
	Team          Team
	Type          ActionType
	WasSuccessful bool
	WasCritical   *bool
	ItemsDropped  string
	RawDamage     int // fixed point, hundredths
	TimeSet       time.Time
}

// Damage returns the user-facing damage value.
func (a Action) Damage() float64 {
	return float64(a.RawDamage) / 100
}

// DamageString formats the damage with two decimal places.
func (a Action) DamageString() string {
	return fmt.Sprintf("%.2f", a.Damage())
}

// StringPtr returns a pointer to the given string.
// Useful for setting optional fields.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return &b
}
