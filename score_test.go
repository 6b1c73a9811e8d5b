package paintmatch

import (
	"math"
	"testing"
)

func fill(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name       string
		values     []float32
		resolution int
		want       int
	}{
		{"all zero", fill(16, 0), 4, 100},
		{"all one", fill(16, 1), 4, 0},
		{"half", fill(16, 0.5), 4, 50},
		{"over one clamps", fill(16, 3), 4, 0},
		{"negative clamps", fill(16, -1), 4, 100},
		{"nan counts as full", fill(16, float32(math.NaN())), 4, 0},
		{"zero resolution", fill(16, 0), 0, 0},
		{"short buffer", fill(3, 0), 4, 0},
		{"extra values ignored", append(fill(16, 0), 1, 1, 1), 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(tt.values, tt.resolution); got != tt.want {
				t.Errorf("Reduce() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReduceRoundsHalfAwayFromZero(t *testing.T) {
	// 2 of 8x8 pixels fully different: similarity 0.96875 -> 96.875 -> 97.
	values := fill(64, 0)
	values[0], values[1] = 1, 1
	if got := Reduce(values, 8); got != 97 {
		t.Errorf("Reduce() = %d, want 97", got)
	}

	// 2x2 pixels at 1/8 each: similarity 0.875 -> 87.5 -> 88.
	values = fill(4, 0.125)
	if got := Reduce(values, 2); got != 88 {
		t.Errorf("Reduce() = %d, want 88 (half rounds up)", got)
	}
}

func TestReduceRangeProperty(t *testing.T) {
	values := make([]float32, 256)
	for seed := 0; seed < 50; seed++ {
		for i := range values {
			// Deterministic noise, including out-of-range samples.
			values[i] = float32((i*31+seed*17)%23)/10 - 0.5
		}
		got := Reduce(values, 16)
		if got < 0 || got > 100 {
			t.Fatalf("seed %d: Reduce() = %d, outside [0, 100]", seed, got)
		}
	}
}

func TestScoreTier(t *testing.T) {
	tests := []struct {
		score int
		tier  Tier
		hex   string
	}{
		{0, TierLow, "#FF4D4D"},
		{19, TierLow, "#FF4D4D"},
		{20, TierMedium, "#FFD93D"},
		{39, TierMedium, "#FFD93D"},
		{40, TierHigh, "#4CAF50"},
		{100, TierHigh, "#4CAF50"},
	}
	for _, tt := range tests {
		tier := ScoreTier(tt.score)
		if tier != tt.tier {
			t.Errorf("ScoreTier(%d) = %v, want %v", tt.score, tier, tt.tier)
		}
		if tier.Hex() != tt.hex {
			t.Errorf("ScoreTier(%d).Hex() = %s, want %s", tt.score, tier.Hex(), tt.hex)
		}
	}
	if s := Tier(9).String(); s != "Tier(9)" {
		t.Errorf("Tier(9).String() = %q", s)
	}
}
