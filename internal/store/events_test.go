package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/graaaaa/pomwars/internal/pom"
)

func insertTestEvent(t *testing.T, s *Store, name string, goal int, start, end time.Time) pom.Event {
	t.Helper()
	e := pom.Event{Name: name, PomGoal: goal, Start: start, End: end}
	if err := s.InsertEvent(context.Background(), &e); err != nil {
		t.Fatalf("InsertEvent %s: %v", name, err)
	}
	return e
}

func TestInsertEvent_Validation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name  string
		event pom.Event
	}{
		{"empty name", pom.Event{Name: "", PomGoal: 1, Start: now, End: now.Add(time.Hour)}},
		{"zero goal", pom.Event{Name: "Spring", PomGoal: 0, Start: now, End: now.Add(time.Hour)}},
		{"negative goal", pom.Event{Name: "Spring", PomGoal: -3, Start: now, End: now.Add(time.Hour)}},
		{"end before start", pom.Event{Name: "Spring", PomGoal: 1, Start: now, End: now.Add(-time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			if err := store.InsertEvent(ctx, &e); !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestListEvents_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	insertTestEvent(t, store, "Spring", 100, base, base.AddDate(0, 0, 30))

	events, err := store.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Name != "Spring" || events[0].PomGoal != 100 {
		t.Fatalf("unexpected events: %+v", events)
	}

	deleted, err := store.DeleteOldestEventByName(ctx, "Spring")
	if err != nil {
		t.Fatalf("DeleteOldestEventByName: %v", err)
	}
	if !deleted {
		t.Error("expected a deletion")
	}

	events, err = store.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events after delete, want 0", len(events))
	}
}

func TestDeleteOldestEventByName_DuplicateNames(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	insertTestEvent(t, store, "Sprint", 10, base.AddDate(0, 2, 0), base.AddDate(0, 2, 7))
	insertTestEvent(t, store, "Sprint", 20, base, base.AddDate(0, 0, 7))

	if _, err := store.DeleteOldestEventByName(ctx, "Sprint"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events, err := store.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].PomGoal != 10 {
		t.Errorf("surviving event goal = %d, want 10 (the newer one)", events[0].PomGoal)
	}
}

func TestOngoingAndUpcomingEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	insertTestEvent(t, store, "Past", 1, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0))
	insertTestEvent(t, store, "Current", 1, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	insertTestEvent(t, store, "Future", 1, now.AddDate(0, 1, 0), now.AddDate(0, 1, 7))

	ongoing, err := store.OngoingEvents(ctx, now)
	if err != nil {
		t.Fatalf("OngoingEvents: %v", err)
	}
	if len(ongoing) != 1 || ongoing[0].Name != "Current" {
		t.Errorf("ongoing = %+v, want [Current]", ongoing)
	}

	upcoming, err := store.UpcomingEvents(ctx, now)
	if err != nil {
		t.Fatalf("UpcomingEvents: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Name != "Future" {
		t.Errorf("upcoming = %+v, want [Future]", upcoming)
	}
}

func TestOverlappingEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	jun1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	jun30 := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	insertTestEvent(t, store, "A", 1, jun1, jun30)

	tests := []struct {
		name        string
		start, end  time.Time
		wantOverlap bool
	}{
		{"inside", jun1.AddDate(0, 0, 14), jun30.AddDate(0, 0, 1), true},
		{"covers", jun1.AddDate(0, 0, -1), jun30.AddDate(0, 0, 1), true},
		{"before", jun1.AddDate(0, -1, 0), jun1.AddDate(0, 0, -1), false},
		{"after", jun30.AddDate(0, 0, 1), jun30.AddDate(0, 1, 0), false},
		{"touching at end is allowed", jun30, jun30.AddDate(0, 0, 7), false},
		{"touching at start is allowed", jun1.AddDate(0, 0, -7), jun1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlaps, err := store.OverlappingEvents(ctx, tt.start, tt.end)
			if err != nil {
				t.Fatalf("OverlappingEvents: %v", err)
			}
			if (len(overlaps) > 0) != tt.wantOverlap {
				t.Errorf("overlap = %v, want %v", len(overlaps) > 0, tt.wantOverlap)
			}
		})
	}
}
