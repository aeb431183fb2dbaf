package veil

import (
	"math"
	mrand "math/rand/v2"
)

// Thermal veils an infrared field with phantom hot/cold patches, a
// directional smear ramp (simulated conduction streaks), flattened dead
// zones, and sensor noise. Values stay inside the input's range.
func Thermal(g Grid, strength float64, rng *mrand.Rand) (Grid, error) {
	if err := g.validate(); err != nil {
		return Grid{}, err
	}
	if g.Empty() || strength <= 0 {
		return g.Clone(), nil
	}

	h, w := g.Rows, g.Cols
	tMin, tMax := minMax(g.Data)
	span := nonZeroSpan(tMax-tMin, 1e-3)

	norm := NewGrid(h, w)
	for i, v := range g.Data {
		norm.Data[i] = (v - tMin) / span
	}

	// 1) Phantom hot/cold spots.
	for i := 0; i < int(6*strength); i++ {
		cy := rng.IntN(h)
		cx := rng.IntN(w)
		ry := intIn(rng, h/20, h/8+1)
		rx := intIn(rng, w/20, w/8+1)
		delta := 0.4 * strength
		if rng.Float64() < 0.5 {
			delta = -delta
		}
		y0, y1 := clampInt(cy-ry, 0, h), clampInt(cy+ry, 0, h)
		x0, x1 := clampInt(cx-rx, 0, w), clampInt(cx+rx, 0, w)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				norm.Set(y, x, clamp(norm.At(y, x)+delta, 0, 1))
			}
		}
	}

	// 2) Directional smear: a ramp aligned with a random direction.
	angle := 2 * math.Pi * rng.Float64()
	dirY, dirX := math.Sin(angle), math.Cos(angle)
	denom := float64(maxInt(h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ramp := (float64(y)*dirY + float64(x)*dirX) / denom
			norm.Set(y, x, clamp(norm.At(y, x)+0.15*strength*ramp, 0, 1))
		}
	}

	// 3) Dead zones: regions flattened to their own mean.
	for i := 0; i < int(3*strength); i++ {
		cy := rng.IntN(h)
		cx := rng.IntN(w)
		ry := intIn(rng, h/10, h/5+1)
		rx := intIn(rng, w/10, w/5+1)
		y0, y1 := clampInt(cy-ry, 0, h), clampInt(cy+ry, 0, h)
		x0, x1 := clampInt(cx-rx, 0, w), clampInt(cx+rx, 0, w)
		if y1 <= y0 || x1 <= x0 {
			continue
		}
		sum, cnt := 0.0, 0
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				sum += norm.At(y, x)
				cnt++
			}
		}
		m := sum / float64(cnt)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				norm.Set(y, x, m)
			}
		}
	}

	// 4) Sensor noise.
	for i := range norm.Data {
		norm.Data[i] = clamp(norm.Data[i]+gauss(rng, 0.05*strength), 0, 1)
	}

	out := NewGrid(h, w)
	for i, v := range norm.Data {
		out.Data[i] = v*span + tMin
	}
	return out, nil
}
