package drive

import (
	"math"
	"math/rand"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// sanitize replaces NaN and infinities with a fallback value. Invalid
// numeric input is always recovered locally, never propagated.
func sanitize(value, fallback float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	return value
}

// MaxFloat calculates the maximum value in a slice of float64 values.
// Returns negative infinity if the slice is empty.
func MaxFloat(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}
	maxVal := values[0]
	for i := 1; i < len(values); i++ {
		if values[i] > maxVal {
			maxVal = values[i]
		}
	}
	return maxVal
}

// Mean calculates the average of a slice of float64 values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// argmaxRandomTie returns the index of the maximum value. Ties among equally
// maximal entries are broken by a uniform random choice among the tied
// indices, avoiding a systematic bias toward low indices.
func argmaxRandomTie(values []float64, rng *rand.Rand) int {
	if len(values) == 0 {
		return 0
	}
	maxVal := MaxFloat(values)
	count := 0
	for _, v := range values {
		if v == maxVal {
			count++
		}
	}
	pick := rng.Intn(count)
	for i, v := range values {
		if v == maxVal {
			if pick == 0 {
				return i
			}
			pick--
		}
	}
	return 0
}
