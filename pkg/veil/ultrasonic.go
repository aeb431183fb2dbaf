package veil

import (
	"math"
	mrand "math/rand/v2"
)

// Ultrasonic veils a ring-distance time series with a subtle baseline bias,
// dead zones (readings pinned toward max or near-zero range), phantom
// obstacle bands at shorter-than-real range, and adaptive jitter. Distances
// never go negative.
func Ultrasonic(s Series, strength float64, rng *mrand.Rand) (Series, error) {
	if err := s.validate(); err != nil {
		return Series{}, err
	}
	out := s.Clone()
	n := len(out.T)
	if n == 0 || strength <= 0 {
		return out, nil
	}

	rMin, rMax := minMax(out.V)
	span := nonZeroSpan(rMax-rMin, 1e-3)
	tNorm := normalizeTime(out.T)

	// 1) Baseline warp: slight bias drifting over time.
	freqs := []float64{0.2, 0.5}
	phases := []float64{2 * math.Pi * rng.Float64(), 2 * math.Pi * rng.Float64()}
	baseline := make([]float64, n)
	for i, tn := range tNorm {
		baseline[i] = 0.7*math.Sin(2*math.Pi*freqs[0]*strength*tn+phases[0]) +
			0.5*math.Cos(2*math.Pi*freqs[1]*strength*tn+phases[1])
	}
	cum := 0.0
	for i := range baseline {
		cum += gauss(rng, 0.005*strength)
		baseline[i] += cum
	}
	for i := range out.V {
		out.V[i] += 0.1 * span * baseline[i]
	}

	// 2) Dead zones and phantom obstacles, blended in with a soft envelope.
	eventCount := maxInt(int(3*strength)+rng.IntN(3), 1)
	for e := 0; e < eventCount; e++ {
		center := intIn(rng, 5, maxInt(6, n-5))
		end := minInt(n, center+intIn(rng, 10, 60))
		if end <= center {
			continue
		}
		window := end - center

		var target float64
		switch rng.IntN(3) {
		case 0: // dead zone: nothing detected
			target = rMax + 0.1*span
		case 1: // dead zone: very near obstacle
			target = math.Max(rMin-0.1*span, 0)
		default: // phantom obstacle band
			target = rMin + 0.2*span
		}

		for i := 0; i < window; i++ {
			base := float64(i) / float64(maxInt(window-1, 1))
			envelope := base * (1 - base) * 4
			j := center + i
			out.V[j] = out.V[j]*(1-envelope) + target*envelope
		}
	}

	// 3) Adaptive jitter.
	noiseSigma := 0.02 * span * strength
	envPhase := 2 * math.Pi * rng.Float64()
	for i, tn := range tNorm {
		env := 0.6 + 0.4*math.Sin(2*math.Pi*0.08*tn+envPhase)
		out.V[i] += gauss(rng, noiseSigma*env)
	}

	// Keep distances physically plausible.
	for i := range out.V {
		out.V[i] = clamp(out.V[i], 0, rMax+0.5*span)
	}

	return out, nil
}
