package veil

import (
	"math"
	mrand "math/rand/v2"
)

// Depth applies the depth-field veil: a smooth sinusoidal warp of the sampled
// positions, rectangular voids forced to far range, narrow "fake wall" bands
// pulled closer than their surroundings, edge noise, and a light quantization
// that mimics bad depth discretization. Values stay inside the input's range.
func Depth(g Grid, strength float64, rng *mrand.Rand) (Grid, error) {
	if err := g.validate(); err != nil {
		return Grid{}, err
	}
	if g.Empty() || strength <= 0 {
		return g.Clone(), nil
	}

	h, w := g.Rows, g.Cols
	dMin, dMax := minMax(g.Data)
	span := dMax - dMin

	// Work in normalized [0,1] space. A flat field normalizes to zeros and
	// still picks up structured noise below.
	norm := NewGrid(h, w)
	if span >= 1e-6 {
		for i, v := range g.Data {
			norm.Data[i] = (v - dMin) / span
		}
	}

	// Smooth low-frequency warp field with bilinear resampling.
	warped := NewGrid(h, w)
	denomY := math.Max(float64(h-1), 1)
	denomX := math.Max(float64(w-1), 1)
	for y := 0; y < h; y++ {
		yn := float64(y) / denomY
		for x := 0; x < w; x++ {
			xn := float64(x) / denomX

			warpY := 0.03 * strength * math.Sin(2*math.Pi*(xn*1.3+yn*0.7))
			warpX := 0.03 * strength * math.Cos(2*math.Pi*(xn*0.9-yn*1.1))

			sy := clamp(float64(y)+warpY*float64(h), 0, float64(h-1))
			sx := clamp(float64(x)+warpX*float64(w), 0, float64(w-1))

			y0 := int(sy)
			x0 := int(sx)
			y1 := clampInt(y0+1, 0, h-1)
			x1 := clampInt(x0+1, 0, w-1)
			wy := sy - float64(y0)
			wx := sx - float64(x0)

			warped.Set(y, x,
				norm.At(y0, x0)*(1-wy)*(1-wx)+
					norm.At(y0, x1)*(1-wy)*wx+
					norm.At(y1, x0)*wy*(1-wx)+
					norm.At(y1, x1)*wy*wx)
		}
	}

	// Voids: rectangular patches forced to maximum depth (missing surfaces).
	for i := 0; i < int(5*strength); i++ {
		cy := rng.IntN(h)
		cx := rng.IntN(w)
		ry := intIn(rng, h/20, h/8+1)
		rx := intIn(rng, w/20, w/8+1)
		fillRect(warped, cy-ry, cy+ry, cx-rx, cx+rx, 1.0)
	}

	// Fake walls: narrow horizontal bands pulled closer than the scene.
	for i := 0; i < int(4*strength); i++ {
		cy := intIn(rng, int(float64(h)*0.2), int(float64(h)*0.9))
		thickness := intIn(rng, 1, maxInt(2, h/40))
		x0 := intIn(rng, 0, w/2)
		x1 := intIn(rng, w/2, w)
		closer := 0.3 + 0.3*rng.Float64()
		for y := cy; y < minInt(cy+thickness, h); y++ {
			for x := x0; x < x1; x++ {
				warped.Set(y, x, clamp(warped.At(y, x)-closer, 0, 1))
			}
		}
	}

	// High-frequency edge noise.
	for i := range warped.Data {
		warped.Data[i] = clamp(warped.Data[i]+gauss(rng, 0.02*strength), 0, 1)
	}

	// Quantization banding (bad depth discretization effect).
	levels := float64(clampInt(int(32*strength), 8, 64))
	for i := range warped.Data {
		warped.Data[i] = math.Round(warped.Data[i]*levels) / levels
	}

	// Back to the original depth range.
	out := NewGrid(h, w)
	for i, v := range warped.Data {
		out.Data[i] = v*span + dMin
	}
	return out, nil
}

func fillRect(g Grid, y0, y1, x0, x1 int, v float64) {
	y0 = clampInt(y0, 0, g.Rows)
	y1 = clampInt(y1, 0, g.Rows)
	x0 = clampInt(x0, 0, g.Cols)
	x1 = clampInt(x1, 0, g.Cols)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g.Set(y, x, v)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
