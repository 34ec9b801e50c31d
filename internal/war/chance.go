// Package war implements the Pom Wars action-resolution engine: success
// probabilities, team assignment, damage, and the resolver that ties them to
// the store and content library.
package war

import "math"

// BaseChanceForCritical is the independent critical roll for successful attacks.
const BaseChanceForCritical = 0.20

// PityIncrement is the heavy-attack chance added per consecutive miss.
const PityIncrement = 0.10

// BaseChance maps the count of a user's actions today to the common success
// chance. The shape is deliberate and preserved exactly: certain success up
// to 5, a quadratic taper from 6 through 10, then a Gaussian tail centered
// at 9 with sigma 1. The steps at n=6 and n=11 are intentional.
func BaseChance(n int) float64 {
	switch {
	case n < 0:
		return 0
	case n <= 5:
		return 1.0
	case n <= 10:
		fn := float64(n)
		return -0.016*fn*fn + 0.16*fn + 0.6
	default:
		d := float64(n - 9)
		return math.Exp(-d * d / 2)
	}
}

// heavyBounds holds the (min, max) heavy-attack base chance per level.
var heavyBounds = [...]struct{ min, max float64 }{
	1: {0.25, 0.75},
	2: {0.30, 0.80},
	3: {0.30, 0.80},
	4: {0.33, 0.83},
	5: {0.37, 0.87},
}

// HeavyBaseChance returns the heavy-attack base chance for a level in 1..5
// given the user's consecutive miss streak. Pity adds PityIncrement per miss
// up to the level's cap. Out-of-range levels clamp into the table.
func HeavyBaseChance(level, misses int) float64 {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	b := heavyBounds[level]

	chance := b.min + PityIncrement*float64(misses)
	if chance < b.min {
		chance = b.min
	}
	if chance > b.max {
		chance = b.max
	}
	return chance
}

// SuccessChance combines the base curve with the heavy modifier.
// For normal attacks and defends the heavy factor is 1.
func SuccessChance(n int, heavy bool, heavyLevel, misses int) float64 {
	chance := BaseChance(n)
	if heavy {
		chance *= HeavyBaseChance(heavyLevel, misses)
	}
	return chance
}
