package veil

import (
	"math"
	mrand "math/rand/v2"
)

// Magnetometer veils a 3-axis magnetic field series with soft-iron style
// bias drift (random axis weights per frequency component), local anomalies
// along random 3-D directions (fake machinery, cables, motors), and per-axis
// adaptive jitter. The drift mixes sinusoids with an integrated random walk,
// so it cannot be subtracted out with a simple harmonic model.
func Magnetometer(s MagSeries, strength float64, rng *mrand.Rand) (MagSeries, error) {
	if err := s.validate(); err != nil {
		return MagSeries{}, err
	}
	out := s.Clone()
	n := len(out.T)
	if n == 0 || strength <= 0 {
		return out, nil
	}

	all := make([]float64, 0, 3*n)
	all = append(all, out.Mx...)
	all = append(all, out.My...)
	all = append(all, out.Mz...)
	lo, hi := minMax(all)
	span := nonZeroSpan(hi-lo, 1e-3)
	std := nonZeroSpan(stddev(all), 1e-3)
	tNorm := normalizeTime(out.T)

	// 1) Multi-frequency bias drift with per-component random axis weights.
	freqs := []float64{0.3, 0.7, 1.3}
	for _, f := range freqs {
		phase := 2 * math.Pi * rng.Float64()
		w := unitVec3(rng)
		for i, tn := range tNorm {
			angle := 2*math.Pi*f*strength*tn + phase
			out.Mx[i] += 0.05 * span * w[0] * math.Sin(angle)
			out.My[i] += 0.05 * span * w[1] * math.Cos(angle)
			out.Mz[i] += 0.05 * span * w[2] * math.Sin(angle+0.5)
		}
	}
	// History-dependent cumulative component.
	var cx, cy, cz float64
	for i := 0; i < n; i++ {
		cx += gauss(rng, 0.01*strength)
		cy += gauss(rng, 0.01*strength)
		cz += gauss(rng, 0.01*strength)
		out.Mx[i] += 0.05 * span * cx
		out.My[i] += 0.05 * span * cy
		out.Mz[i] += 0.05 * span * cz
	}

	// 2) Local anomalies: shaped pulses along random field directions.
	anomalyCount := maxInt(int(4*strength)+rng.IntN(3), 1)
	for a := 0; a < anomalyCount; a++ {
		center := intIn(rng, 5, maxInt(6, n-5))
		end := minInt(n, center+intIn(rng, 8, 40))
		if end <= center {
			continue
		}
		window := end - center
		dir := unitVec3(rng)
		amp := (0.5 + 0.5*rng.Float64()) * std * strength

		shape := rng.IntN(3)
		for i := 0; i < window; i++ {
			base := float64(i) / float64(maxInt(window-1, 1))
			var v float64
			switch shape {
			case 0: // symmetric bump
				v = base * (1 - base) * 4
			case 1: // ramp
				v = base
			default: // asymmetric bump
				v = base * math.Exp(-2*base)
			}
			j := center + i
			out.Mx[j] += dir[0] * amp * v
			out.My[j] += dir[1] * amp * v
			out.Mz[j] += dir[2] * amp * v
		}
	}

	// 3) Per-axis jitter with slightly different characteristics.
	jitter := 0.05 * std * strength
	addNoise(rng, out.Mx, jitter)
	addNoise(rng, out.My, jitter*1.2)
	addNoise(rng, out.Mz, jitter*0.8)

	return out, nil
}

// unitVec3 draws a random unit vector in field space.
func unitVec3(rng *mrand.Rand) [3]float64 {
	v := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if norm < 1e-6 {
		return [3]float64{1, 0, 0}
	}
	return [3]float64{v[0] / norm, v[1] / norm, v[2] / norm}
}
