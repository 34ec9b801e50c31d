package store

import (
	"context"
	"errors"
	"testing"

	"github.com/graaaaa/pomwars/internal/pom"
)

func insertTestUser(t *testing.T, s *Store, userID int64, team pom.Team) {
	t.Helper()
	u := pom.User{
		UserID:           userID,
		Timezone:         "+0000",
		Team:             team,
		PlayerLevel:      1,
		AttackLevel:      1,
		HeavyAttackLevel: 1,
		DefendLevel:      1,
	}
	if err := s.InsertUser(context.Background(), &u); err != nil {
		t.Fatalf("InsertUser %d: %v", userID, err)
	}
}

func TestInsertUser_Duplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	insertTestUser(t, store, 42, pom.TeamKnights)

	u := pom.User{UserID: 42, Team: pom.TeamVikings}
	err := store.InsertUser(ctx, &u)
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("expected ErrUserAlreadyExists, got %v", err)
	}

	// Original team is untouched.
	got, err := store.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Team != pom.TeamKnights {
		t.Errorf("team = %s, want Knights", got.Team)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetUser(context.Background(), 999)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUserTeamAndTimezone(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	insertTestUser(t, store, 42, pom.TeamKnights)

	if err := store.UpdateUserTeam(ctx, 42, pom.TeamVikings); err != nil {
		t.Fatalf("UpdateUserTeam: %v", err)
	}
	if err := store.UpdateUserTimezone(ctx, 42, "+0200"); err != nil {
		t.Fatalf("UpdateUserTimezone: %v", err)
	}

	u, err := store.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Team != pom.TeamVikings {
		t.Errorf("team = %s, want Vikings", u.Team)
	}
	if u.Timezone != "+0200" {
		t.Errorf("timezone = %s, want +0200", u.Timezone)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.UpdateUserTeam(ctx, 999, pom.TeamKnights); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateUserTeam: expected ErrUserNotFound, got %v", err)
	}
	if err := store.UpdateUserTimezone(ctx, 999, "+0100"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateUserTimezone: expected ErrUserNotFound, got %v", err)
	}
}

func TestTeamPopulation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	insertTestUser(t, store, 1, pom.TeamKnights)
	insertTestUser(t, store, 2, pom.TeamKnights)
	insertTestUser(t, store, 3, pom.TeamVikings)

	knights, err := store.TeamPopulation(ctx, pom.TeamKnights)
	if err != nil {
		t.Fatalf("TeamPopulation: %v", err)
	}
	vikings, err := store.TeamPopulation(ctx, pom.TeamVikings)
	if err != nil {
		t.Fatalf("TeamPopulation: %v", err)
	}
	if knights != 2 || vikings != 1 {
		t.Errorf("populations = %d/%d, want 2/1", knights, vikings)
	}
}
