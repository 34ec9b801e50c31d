package war

import (
	"math"
	"testing"

	"github.com/graaaaa/pomwars/internal/store"
)

func TestDefensiveMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		defenders []store.Defender
		want      float64
	}{
		{"no defenders", nil, 0},
		{"single level 1", []store.Defender{{UserID: 1, DefendLevel: 1}}, 0.05},
		{"levels 1 and 2", []store.Defender{{UserID: 1, DefendLevel: 1}, {UserID: 2, DefendLevel: 2}}, 0.13},
		{"capped at 0.25", []store.Defender{
			{UserID: 1, DefendLevel: 5},
			{UserID: 2, DefendLevel: 5},
			{UserID: 3, DefendLevel: 5},
			{UserID: 4, DefendLevel: 5},
		}, 0.25},
		{"out-of-range level clamps", []store.Defender{{UserID: 1, DefendLevel: 0}}, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefensiveMultiplier(tt.defenders); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DefensiveMultiplier = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRawDamage(t *testing.T) {
	tests := []struct {
		name                    string
		base, multiplier, defen float64
		want                    int
	}{
		{"undefended", 10, 1.0, 0, 1000},
		{"defended 13 percent", 10, 1.0, 0.13, 870},
		{"heavy with content multiplier", 25, 2.0, 0, 5000},
		{"max defence floor", 10, 1.0, 0.25, 750},
		{"rounding", 10, 1.0 / 3, 0, 333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RawDamage(tt.base, tt.multiplier, tt.defen); got != tt.want {
				t.Errorf("RawDamage = %d, want %d", got, tt.want)
			}
		})
	}
}
