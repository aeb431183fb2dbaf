package veil

import (
	mrand "math/rand/v2"
)

// Stereo veils a left/right image pair by shifting horizontal bands
// independently in each plane (breaking the disparity relationship), then
// overlaying sensor noise. Both planes must share the same shape. Band
// offsets are drawn per plane, so a stereo matcher sees inconsistent
// disparities rather than a clean translation.
func Stereo(left, right Grid, strength float64, rng *mrand.Rand) (Grid, Grid, error) {
	if err := left.validate(); err != nil {
		return Grid{}, Grid{}, err
	}
	if err := right.validate(); err != nil {
		return Grid{}, Grid{}, err
	}
	if left.Rows != right.Rows || left.Cols != right.Cols {
		return Grid{}, Grid{}, ErrInvalidShape
	}
	if left.Empty() || strength <= 0 {
		return left.Clone(), right.Clone(), nil
	}

	vl := bandJitter(left, strength, rng)
	vr := bandJitter(right, strength, rng)
	return vl, vr, nil
}

const stereoBandHeight = 16

func bandJitter(g Grid, strength float64, rng *mrand.Rand) Grid {
	h, w := g.Rows, g.Cols
	lo, hi := minMax(g.Data)
	span := nonZeroSpan(hi-lo, 1e-3)

	maxOffset := maxInt(1, int(3*strength))
	out := NewGrid(h, w)

	for y0 := 0; y0 < h; y0 += stereoBandHeight {
		y1 := minInt(y0+stereoBandHeight, h)
		offset := rng.IntN(2*maxOffset+1) - maxOffset
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				src := x - offset
				if src >= 0 && src < w {
					out.Set(y, x, g.At(y, src))
				} else {
					out.Set(y, x, lo)
				}
			}
		}
	}

	// Sensor noise, roughly 2% of the value range per unit strength.
	sigma := 0.02 * span * strength
	for i := range out.Data {
		out.Data[i] = clamp(out.Data[i]+gauss(rng, sigma), lo, hi)
	}
	return out
}
