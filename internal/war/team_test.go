package war

import (
	"context"
	"testing"

	"github.com/graaaaa/pomwars/internal/pom"
)

type fixedPopulations struct {
	knights, vikings int
}

func (p fixedPopulations) TeamPopulation(ctx context.Context, team pom.Team) (int, error) {
	if team == pom.TeamKnights {
		return p.knights, nil
	}
	return p.vikings, nil
}

func TestTeamPolicy_ForcedGuilds(t *testing.T) {
	policy := NewTeamPolicy([]int64{100}, []int64{200}, fixedPopulations{}, &seqRNG{values: []float64{0.9}})
	ctx := context.Background()

	team, err := policy.Assign(ctx, 100)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if team != pom.TeamKnights {
		t.Errorf("knight-only guild assigned %s", team)
	}

	team, err = policy.Assign(ctx, 200)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if team != pom.TeamVikings {
		t.Errorf("viking-only guild assigned %s", team)
	}
}

func TestTeamPolicy_BalancesPopulation(t *testing.T) {
	ctx := context.Background()

	policy := NewTeamPolicy(nil, nil, fixedPopulations{knights: 5, vikings: 3}, &seqRNG{values: []float64{0.0}})
	team, err := policy.Assign(ctx, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if team != pom.TeamVikings {
		t.Errorf("assigned %s, want Vikings (smaller team)", team)
	}

	policy = NewTeamPolicy(nil, nil, fixedPopulations{knights: 2, vikings: 6}, &seqRNG{values: []float64{0.9}})
	team, err = policy.Assign(ctx, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if team != pom.TeamKnights {
		t.Errorf("assigned %s, want Knights (smaller team)", team)
	}
}

func TestTeamPolicy_CoinFlipOnTie(t *testing.T) {
	ctx := context.Background()

	policy := NewTeamPolicy(nil, nil, fixedPopulations{knights: 4, vikings: 4}, &seqRNG{values: []float64{0.2}})
	team, err := policy.Assign(ctx, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if team != pom.TeamKnights {
		t.Errorf("flip < 0.5 assigned %s, want Knights", team)
	}

	policy = NewTeamPolicy(nil, nil, fixedPopulations{knights: 4, vikings: 4}, &seqRNG{values: []float64{0.7}})
	team, err = policy.Assign(ctx, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if team != pom.TeamVikings {
		t.Errorf("flip >= 0.5 assigned %s, want Vikings", team)
	}
}

func TestTeamOpposite(t *testing.T) {
	if pom.TeamKnights.Opposite() != pom.TeamVikings {
		t.Error("~Knights != Vikings")
	}
	if pom.TeamVikings.Opposite() != pom.TeamKnights {
		t.Error("~Vikings != Knights")
	}
}
