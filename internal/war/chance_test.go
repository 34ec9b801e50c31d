package war

import (
	"math"
	"testing"
)

func TestBaseChance_CertainThroughFive(t *testing.T) {
	for n := 0; n <= 5; n++ {
		if got := BaseChance(n); got != 1.0 {
			t.Errorf("BaseChance(%d) = %v, want 1.0", n, got)
		}
	}
}

func TestBaseChance_QuadraticTaper(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{6, -0.016*36 + 0.16*6 + 0.6},
		{7, -0.016*49 + 0.16*7 + 0.6},
		{10, -0.016*100 + 0.16*10 + 0.6},
	}

	for _, tt := range tests {
		if got := BaseChance(tt.n); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("BaseChance(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestBaseChance_StepAtSix(t *testing.T) {
	// The drop from 1.0 at n=5 is an intentional discontinuity.
	if BaseChance(5) != 1.0 {
		t.Fatalf("BaseChance(5) = %v, want 1.0", BaseChance(5))
	}
	if got := BaseChance(6); got >= 1.0 {
		t.Errorf("BaseChance(6) = %v, want < 1.0", got)
	}
}

func TestBaseChance_GaussianTail(t *testing.T) {
	want := math.Exp(-2) // (11-9)^2 / 2
	if got := BaseChance(11); math.Abs(got-want) > 1e-12 {
		t.Errorf("BaseChance(11) = %v, want %v (≈0.1353)", got, want)
	}
	if got := BaseChance(12); math.Abs(got-math.Exp(-4.5)) > 1e-12 {
		t.Errorf("BaseChance(12) = %v, want %v", got, math.Exp(-4.5))
	}
}

func TestBaseChance_MonotonicNonIncreasingFromNine(t *testing.T) {
	prev := BaseChance(9)
	for n := 10; n <= 30; n++ {
		cur := BaseChance(n)
		if cur > prev {
			t.Errorf("BaseChance(%d) = %v > BaseChance(%d) = %v", n, cur, n-1, prev)
		}
		prev = cur
	}
}

func TestBaseChance_NegativeIsZero(t *testing.T) {
	if got := BaseChance(-1); got != 0 {
		t.Errorf("BaseChance(-1) = %v, want 0", got)
	}
}

func TestHeavyBaseChance_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		level  int
		misses int
		want   float64
	}{
		{"level 1 no misses", 1, 0, 0.25},
		{"level 1 one miss", 1, 1, 0.35},
		{"level 1 capped at max", 1, 5, 0.75},
		{"level 1 far past cap", 1, 50, 0.75},
		{"level 2 no misses", 2, 0, 0.30},
		{"level 3 capped", 3, 9, 0.80},
		{"level 4 no misses", 4, 0, 0.33},
		{"level 5 no misses", 5, 0, 0.37},
		{"level 5 capped", 5, 5, 0.87},
		{"level below range clamps to 1", 0, 0, 0.25},
		{"level above range clamps to 5", 9, 0, 0.37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeavyBaseChance(tt.level, tt.misses); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("HeavyBaseChance(%d, %d) = %v, want %v", tt.level, tt.misses, got, tt.want)
			}
		})
	}
}

func TestSuccessChance_HeavyWithPity(t *testing.T) {
	// Level 1 after 3 misses with 3 actions today: 0.55 * 1.0.
	got := SuccessChance(3, true, 1, 3)
	if math.Abs(got-0.55) > 1e-12 {
		t.Errorf("SuccessChance = %v, want 0.55", got)
	}
}

func TestSuccessChance_NormalIgnoresHeavyInputs(t *testing.T) {
	if got := SuccessChance(3, false, 1, 3); got != 1.0 {
		t.Errorf("SuccessChance = %v, want 1.0", got)
	}
}
