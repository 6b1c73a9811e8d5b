package paintmatch

import (
	"fmt"
	"math"
)

// DefaultThreshold is the score at or above which a round may advance.
const DefaultThreshold = 40

// Reduce converts resolution² per-pixel differences into a similarity score.
//
// The differences are summed in float64, divided by resolution² (every value
// is at most 1), and the similarity 1 - normalized is converted to a
// percentage rounded half away from zero and clamped to [0, 100]. Only the
// final percentage is rounded. NaN values count as a full difference.
// Reduce returns 0 when resolution is not positive or values is short.
func Reduce(values []float32, resolution int) int {
	if resolution <= 0 {
		return 0
	}
	n := resolution * resolution
	if len(values) < n {
		return 0
	}

	var total float64
	for _, v := range values[:n] {
		if v != v {
			total++
			continue
		}
		total += float64(v)
	}

	similarity := 1 - total/float64(n)
	return clampScore(math.Round(similarity * 100))
}

func clampScore(pct float64) int {
	switch {
	case math.IsNaN(pct), pct <= 0:
		return 0
	case pct >= 100:
		return 100
	default:
		return int(pct)
	}
}

// Tier is a feedback band for a score.
type Tier uint8

const (
	// TierLow is a score below 20.
	TierLow Tier = iota
	// TierMedium is a score in [20, 40).
	TierMedium
	// TierHigh is a score of 40 or more.
	TierHigh
)

// ScoreTier returns the feedback band for score.
func ScoreTier(score int) Tier {
	switch {
	case score < 20:
		return TierLow
	case score < 40:
		return TierMedium
	default:
		return TierHigh
	}
}

// Hex returns the feedback color for the tier as "#RRGGBB".
func (t Tier) Hex() string {
	switch t {
	case TierLow:
		return "#FF4D4D"
	case TierMedium:
		return "#FFD93D"
	default:
		return "#4CAF50"
	}
}

// Color returns the feedback color for the tier.
func (t Tier) Color() RGBA {
	return Hex(t.Hex())
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "Low"
	case TierMedium:
		return "Medium"
	case TierHigh:
		return "High"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}
