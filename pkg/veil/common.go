package veil

import (
	"math"
	mrand "math/rand/v2"
)

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// minMax scans a slice once; returns (0, 0) for empty input.
func minMax(v []float64) (float64, float64) {
	if len(v) == 0 {
		return 0, 0
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func stddev(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	m := mean(v)
	acc := 0.0
	for _, x := range v {
		d := x - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(v)))
}

// intIn draws an integer in [lo, hi). Degenerate bounds collapse to lo so
// tiny inputs (a 3x3 grid, a 4-bin scan) never panic the generator.
func intIn(rng *mrand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo)
}

// gauss draws one normal sample with the given standard deviation.
func gauss(rng *mrand.Rand, sigma float64) float64 {
	return rng.NormFloat64() * sigma
}

// nonZeroSpan widens degenerate ranges so normalization never divides by zero.
func nonZeroSpan(span, floor float64) float64 {
	if span < floor {
		return floor
	}
	return span
}
