package war

import (
	"math"
	"time"

	"github.com/graaaaa/pomwars/internal/store"
)

// DefendDuration is how far back defends shield their team.
const DefendDuration = 30 * time.Minute

// MaximumTeamDefence caps the summed defensive multiplier.
const MaximumTeamDefence = 0.25

// defendLevelMultipliers maps a defender's level to their contribution.
var defendLevelMultipliers = [...]float64{
	1: 0.05,
	2: 0.08,
	3: 0.07,
	4: 0.08,
	5: 0.09,
}

// DefensiveMultiplier sums the contributions of distinct defenders, capped
// at MaximumTeamDefence. Callers pass the deduplicated defender list from
// the store; stacking requires distinct defenders.
func DefensiveMultiplier(defenders []store.Defender) float64 {
	sum := 0.0
	for _, d := range defenders {
		level := d.DefendLevel
		if level < 1 {
			level = 1
		}
		if level > 5 {
			level = 5
		}
		sum += defendLevelMultipliers[level]
	}
	if sum > MaximumTeamDefence {
		sum = MaximumTeamDefence
	}
	return sum
}

// RawDamage computes the fixed-point damage in hundredths:
// round(base * contentMultiplier * (1 - defensive) * 100).
func RawDamage(base, contentMultiplier, defensive float64) int {
	real := base * contentMultiplier * (1 - defensive)
	return int(math.Round(real * 100))
}
