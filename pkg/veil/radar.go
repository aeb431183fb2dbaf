package veil

import (
	"math"
	mrand "math/rand/v2"
)

// Radar veils a range-Doppler intensity map: Gaussian phantom targets are
// superimposed at plausible magnitude, rectangular patches of real returns
// are attenuated to near zero, and a structured ripple runs along both axes.
// Output intensities stay inside the input's value range.
func Radar(g Grid, strength float64, rng *mrand.Rand) (Grid, error) {
	if err := g.validate(); err != nil {
		return Grid{}, err
	}
	if g.Empty() || strength <= 0 {
		return g.Clone(), nil
	}

	rows, cols := g.Rows, g.Cols
	vMin, vMax := minMax(g.Data)
	span := nonZeroSpan(vMax-vMin, 1e-6)

	norm := NewGrid(rows, cols)
	for i, v := range g.Data {
		norm.Data[i] = (v - vMin) / span
	}

	// 1) Phantom targets: Gaussian blobs in normalized range x Doppler space.
	for i := 0; i < int(5*strength); i++ {
		cr := 0.05 + 0.9*rng.Float64()
		cv := -0.9 + 1.8*rng.Float64()
		sr := 0.02 + 0.08*rng.Float64()
		sv := 0.05 + 0.15*rng.Float64()
		amp := (0.3 + 0.7*rng.Float64()) * strength

		for r := 0; r < rows; r++ {
			gr := float64(r) / math.Max(float64(rows-1), 1)
			for c := 0; c < cols; c++ {
				gv := -1 + 2*float64(c)/math.Max(float64(cols-1), 1)
				e := (gr-cr)*(gr-cr)/(2*sr*sr) + (gv-cv)*(gv-cv)/(2*sv*sv)
				norm.Set(r, c, norm.At(r, c)+amp*math.Exp(-e))
			}
		}
	}

	// 2) Attenuated patches: lanes of real returns almost wiped.
	for i := 0; i < int(4*strength); i++ {
		r0 := rng.IntN(maxInt(1, rows-6))
		c0 := rng.IntN(maxInt(1, cols-4))
		r1 := minInt(rows, r0+intIn(rng, 3, 12))
		c1 := minInt(cols, c0+intIn(rng, 3, 8))
		factor := 0.3 * rng.Float64()
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				norm.Set(r, c, norm.At(r, c)*factor)
			}
		}
	}

	// 3) Structured ripple along both axes plus random noise.
	for r := 0; r < rows; r++ {
		rippleRow := 0.04 * strength * math.Sin(3*math.Pi*float64(r)/math.Max(float64(rows-1), 1))
		for c := 0; c < cols; c++ {
			rippleCol := 0.04 * strength * math.Cos(4*math.Pi*float64(c)/math.Max(float64(cols-1), 1))
			norm.Set(r, c, norm.At(r, c)+rippleRow+rippleCol)
		}
	}
	for i := range norm.Data {
		norm.Data[i] = clamp(norm.Data[i]+gauss(rng, 0.04*strength), 0, 1)
	}

	out := NewGrid(rows, cols)
	for i, v := range norm.Data {
		out.Data[i] = v*span + vMin
	}
	return out, nil
}
