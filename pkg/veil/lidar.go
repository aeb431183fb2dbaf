package veil

import (
	"math"
	mrand "math/rand/v2"
)

// LidarRanges veils an angle-indexed scan of range readings. Three passes:
// per-bin Gaussian jitter, contiguous void sectors blanked to max range, and
// ghost obstacles written as close-range wedges. Void bins hold exactly the
// max-range sentinel and ghost bins exactly the close-range value, so a
// consumer sees clean "no return" arcs and phantom obstacles.
func LidarRanges(ranges []float64, strength float64, rng *mrand.Rand) []float64 {
	out := cloneSlice(ranges)
	n := len(out)
	if n == 0 || strength <= 0 {
		return out
	}

	rMin, rMax := minMax(out)
	span := rMax - rMin
	if span < 1e-6 {
		// Degenerate constant scan: fall back to [0, max] as the range domain.
		rMin = 0
		span = nonZeroSpan(rMax, 1e-3)
	}

	// 1) Range jitter on every bin.
	sigma := 0.03 * span * strength
	for i := range out {
		out[i] = clamp(out[i]+gauss(rng, sigma), rMin, rMax)
	}

	// 2) Void sectors: contiguous arcs forced to max range (no returns).
	void := make([]bool, n)
	for i := 0; i < int(4*strength); i++ {
		start := rng.IntN(n)
		width := intIn(rng, 4, maxInt(5, int(10*strength)))
		for j := start; j < minInt(start+width, n); j++ {
			out[j] = rMax
			void[j] = true
		}
	}

	// 3) Ghost obstacles: close-range wedges placed on non-void bins so the
	// blanked arcs stay intact.
	free := make([]int, 0, n)
	for i, v := range void {
		if !v {
			free = append(free, i)
		}
	}
	ghostLevel := rMin + 0.05*span
	for i := 0; i < int(6*strength) && len(free) > 0; i++ {
		start := free[rng.IntN(len(free))]
		width := intIn(rng, 2, maxInt(3, int(8*strength)))
		for j := start; j < minInt(start+width, n) && !void[j]; j++ {
			out[j] = ghostLevel
		}
	}

	return out
}

// LidarPoints veils a 3-D point cloud in place-preserving form: ghost
// clusters relocate a swarm of existing points around a seed return, blanked
// sectors push points in an angular wedge out to max radial range, and every
// point picks up coordinate jitter. The output always has exactly the input's
// point count.
func LidarPoints(points []Point3, strength float64, rng *mrand.Rand) []Point3 {
	out := make([]Point3, len(points))
	copy(out, points)
	n := len(out)
	if n == 0 || strength <= 0 {
		return out
	}

	dMin, dMax := math.Inf(1), math.Inf(-1)
	for _, p := range out {
		d := math.Hypot(p.X, p.Y)
		if d < dMin {
			dMin = d
		}
		if d > dMax {
			dMax = d
		}
	}
	span := nonZeroSpan(dMax-dMin, 1e-3)

	// 1) Ghost clusters around randomly chosen seed returns.
	for i := 0; i < int(5*strength); i++ {
		center := out[rng.IntN(n)]
		swarm := intIn(rng, 10, 30)
		scale := 0.6 + 0.8*rng.Float64()
		sigma := 0.05 * span * strength
		for j := 0; j < swarm; j++ {
			k := rng.IntN(n)
			out[k] = Point3{
				X: (center.X + gauss(rng, sigma)) * scale,
				Y: (center.Y + gauss(rng, sigma)) * scale,
				Z: center.Z + gauss(rng, sigma),
			}
		}
	}

	// 2) Blank sectors: angular wedges pushed to max radial range.
	for i := 0; i < int(3*strength); i++ {
		centerAngle := -math.Pi + 2*math.Pi*rng.Float64()
		width := (0.1 + 0.3*rng.Float64()) * strength
		for j := range out {
			bearing := math.Atan2(out[j].Y, out[j].X)
			if math.Abs(angleDiff(bearing, centerAngle)) < width && rng.Float64() < 0.5 {
				d := math.Hypot(out[j].X, out[j].Y)
				if d > 1e-9 {
					f := dMax / d
					out[j].X *= f
					out[j].Y *= f
				}
			}
		}
	}

	// 3) Coordinate jitter on the whole cloud.
	sigma := 0.02 * span * strength
	for j := range out {
		out[j].X += gauss(rng, sigma)
		out[j].Y += gauss(rng, sigma)
		out[j].Z += gauss(rng, sigma)
	}

	return out
}

// angleDiff returns the signed shortest difference between two bearings.
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}
