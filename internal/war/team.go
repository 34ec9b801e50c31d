package war

import (
	"context"
	"fmt"

	"github.com/graaaaa/pomwars/internal/pom"
)

// PopulationReader reads team sizes for balance assignment.
type PopulationReader interface {
	TeamPopulation(ctx context.Context, team pom.Team) (int, error)
}

// TeamPolicy assigns new participants to a team.
type TeamPolicy struct {
	knightOnly  map[int64]bool
	vikingOnly  map[int64]bool
	populations PopulationReader
	rng         RNG
}

// NewTeamPolicy builds a policy from the forced-guild lists.
func NewTeamPolicy(knightOnly, vikingOnly []int64, populations PopulationReader, rng RNG) *TeamPolicy {
	p := &TeamPolicy{
		knightOnly:  make(map[int64]bool, len(knightOnly)),
		vikingOnly:  make(map[int64]bool, len(vikingOnly)),
		populations: populations,
		rng:         rng,
	}
	for _, g := range knightOnly {
		p.knightOnly[g] = true
	}
	for _, g := range vikingOnly {
		p.vikingOnly[g] = true
	}
	return p
}

// Assign picks a team for a new participant joining from the given guild:
// forced lists first, then the smaller team, then a coin flip on ties.
func (p *TeamPolicy) Assign(ctx context.Context, guildID int64) (pom.Team, error) {
	if p.knightOnly[guildID] {
		return pom.TeamKnights, nil
	}
	if p.vikingOnly[guildID] {
		return pom.TeamVikings, nil
	}

	knights, err := p.populations.TeamPopulation(ctx, pom.TeamKnights)
	if err != nil {
		return "", fmt.Errorf("knight population: %w", err)
	}
	vikings, err := p.populations.TeamPopulation(ctx, pom.TeamVikings)
	if err != nil {
		return "", fmt.Errorf("viking population: %w", err)
	}

	switch {
	case knights < vikings:
		return pom.TeamKnights, nil
	case vikings < knights:
		return pom.TeamVikings, nil
	}

	if p.rng.Float64() < 0.5 {
		return pom.TeamKnights, nil
	}
	return pom.TeamVikings, nil
}
