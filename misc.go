package doomsie3d

import (
	"math"

	"golang.org/x/exp/constraints"
)

func degreesToRadians[T constraints.Integer | constraints.Float](n T) float64 {
	return float64(n) * (math.Pi / 180)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// wrapIndex maps any integer onto [0, n), including negatives.
func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
