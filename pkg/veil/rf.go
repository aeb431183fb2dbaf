package veil

import (
	"math"
	mrand "math/rand/v2"
)

// RF veils an RF power time series: a multi-frequency baseline warp with a
// cumulative random-walk component, interference-like bursts (spike train,
// block, or notch envelopes), and adaptive noise whose variance follows a
// slow envelope. The result stays plausible while defeating localization and
// interference analysis from exported logs.
func RF(s Series, strength float64, rng *mrand.Rand) (Series, error) {
	if err := s.validate(); err != nil {
		return Series{}, err
	}
	out := s.Clone()
	n := len(out.T)
	if n == 0 || strength <= 0 {
		return out, nil
	}

	pMin, pMax := minMax(out.V)
	span := nonZeroSpan(pMax-pMin, 1e-3)
	std := nonZeroSpan(stddev(out.V), 1e-3)
	tNorm := normalizeTime(out.T)

	// 1) Multi-frequency baseline warp.
	freqs := []float64{0.15, 0.4, 0.8}
	phases := make([]float64, len(freqs))
	for i := range phases {
		phases[i] = 2 * math.Pi * rng.Float64()
	}
	warp := make([]float64, n)
	for i, tn := range tNorm {
		for j, f := range freqs {
			angle := 2*math.Pi*f*strength*tn + phases[j]
			switch j {
			case 0:
				warp[i] += 0.7 * math.Sin(angle)
			case 1:
				warp[i] += 0.5 * math.Cos(angle)
			default:
				warp[i] += 0.4 * math.Sin(angle+0.6) * math.Cos(0.4*angle)
			}
		}
	}
	// Slow cumulative drift so the pattern is not purely sinusoidal.
	cum := 0.0
	for i := range warp {
		cum += gauss(rng, 0.01*strength)
		warp[i] += cum
	}
	for i := range out.V {
		out.V[i] += 0.2 * span * warp[i]
	}

	// 2) Interference bursts / ghost regions.
	burstCount := maxInt(int(3*strength)+rng.IntN(4), 1)
	for b := 0; b < burstCount; b++ {
		center := intIn(rng, 5, maxInt(6, n-5))
		end := minInt(n, center+intIn(rng, 15, 80))
		if end <= center {
			continue
		}
		window := end - center
		amp := (1.0 + 1.5*rng.Float64()) * std * strength

		shape := rng.IntN(3)
		for i := 0; i < window; i++ {
			base := float64(i) / float64(maxInt(window-1, 1))
			envelope := base * (1 - base) * 4
			var v float64
			switch shape {
			case 0: // spike train inside a shaped envelope
				if rng.Float64() > 0.6 {
					v = envelope
				}
			case 1: // plateau with soft edges
				v = envelope
			default: // notch: signal drop region
				v = -envelope
			}
			out.V[center+i] += amp * v
		}
	}

	// 3) Adaptive noise with a slow variance envelope.
	noiseSigma := 0.05 * span * strength
	envPhase := 2 * math.Pi * rng.Float64()
	for i, tn := range tNorm {
		env := 0.4 + 0.6*math.Abs(math.Sin(2*math.Pi*0.07*tn+envPhase))
		out.V[i] += gauss(rng, noiseSigma*env)
	}

	return out, nil
}

// normalizeTime maps a timeline onto [0,1]; a degenerate timeline maps to
// zeros.
func normalizeTime(t []float64) []float64 {
	out := make([]float64, len(t))
	if len(t) == 0 {
		return out
	}
	span := t[len(t)-1] - t[0]
	if span < 1e-6 {
		return out
	}
	for i, v := range t {
		out[i] = (v - t[0]) / span
	}
	return out
}
