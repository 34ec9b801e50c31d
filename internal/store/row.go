package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/graaaaa/pomwars/internal/pom"
)

// pomRow is the internal type representing a poms table row.
type pomRow struct {
	ID             int64
	UserID         int64
	Descript       sql.NullString
	TimeSet        string
	CurrentSession int
}

func (r *pomRow) toPom() (*pom.Pom, error) {
	ts, err := time.Parse(TimeFormat, r.TimeSet)
	if err != nil {
		return nil, fmt.Errorf("parse time_set %q: %w", r.TimeSet, err)
	}

	p := &pom.Pom{
		ID:             r.ID,
		UserID:         r.UserID,
		TimeSet:        ts,
		CurrentSession: r.CurrentSession != 0,
	}
	if r.Descript.Valid {
		p.Description = &r.Descript.String
	}
	return p, nil
}

// eventRow is the internal type representing an events table row.
type eventRow struct {
	ID        int64
	EventName string
	PomGoal   int
	StartDate string
	EndDate   string
}

func (r *eventRow) toEvent() (*pom.Event, error) {
	start, err := time.Parse(TimeFormat, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse start_date %q: %w", r.StartDate, err)
	}
	end, err := time.Parse(TimeFormat, r.EndDate)
	if err != nil {
		return nil, fmt.Errorf("parse end_date %q: %w", r.EndDate, err)
	}
	return &pom.Event{
		ID:      r.ID,
		Name:    r.EventName,
		PomGoal: r.PomGoal,
		Start:   start,
		End:     end,
	}, nil
}

// actionRow is the internal type representing an actions table row.
type actionRow struct {
	ID            int64
	UserID        int64
	Team          string
	Type          string
	WasSuccessful int
	WasCritical   sql.NullInt64
	ItemsDropped  string
	Damage        int
	TimeSet       string
}

func (r *actionRow) toAction() (*pom.Action, error) {
	ts, err := time.Parse(TimeFormat, r.TimeSet)
	if err != nil {
		return nil, fmt.Errorf("parse time_set %q: %w", r.TimeSet, err)
	}

	a := &pom.Action{
		ID:            r.ID,
		UserID:        r.UserID,
		Team:          pom.Team(r.Team),
		Type:          pom.ActionType(r.Type),
		WasSuccessful: r.WasSuccessful != 0,
		ItemsDropped:  r.ItemsDropped,
		RawDamage:     r.Damage,
		TimeSet:       ts,
	}
	if r.WasCritical.Valid {
		a.WasCritical = pom.BoolPtr(r.WasCritical.Int64 != 0)
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
