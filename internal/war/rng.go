package war

import "math/rand"

// RNG is the randomness the engine needs. Rolls and content picks both draw
// from it, so a seeded implementation makes a whole resolution deterministic.
type RNG interface {
	Float64() float64
}

// DefaultRNG returns the process-default random source.
func DefaultRNG() RNG {
	return defaultRNG{}
}

type defaultRNG struct{}

func (defaultRNG) Float64() float64 {
	return rand.Float64()
}
