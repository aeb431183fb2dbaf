package veil

import (
	"math"
	mrand "math/rand/v2"
)

// Barometer veils a pressure time series: multi-frequency drift (weather plus
// sensor bias), transient anomalies shaped as bumps, dips or tilted ramps
// (altitude illusions), and adaptive noise scaled to the signal span.
func Barometer(s Series, strength float64, rng *mrand.Rand) (Series, error) {
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

	// 1) Multi-frequency drift with a history-dependent component.
	freqs := []float64{0.1, 0.25, 0.45}
	phases := make([]float64, len(freqs))
	for i := range phases {
		phases[i] = 2 * math.Pi * rng.Float64()
	}
	drift := make([]float64, n)
	for i, tn := range tNorm {
		for j, f := range freqs {
			angle := 2*math.Pi*f*strength*tn + phases[j]
			switch j {
			case 0:
				drift[i] += 0.6 * math.Sin(angle)
			case 1:
				drift[i] += 0.4 * math.Cos(angle)
			default:
				drift[i] += 0.3 * math.Sin(angle+0.7) * math.Cos(0.5*angle)
			}
		}
	}
	cum := 0.0
	for i := range drift {
		cum += gauss(rng, 0.002*strength)
		drift[i] += cum
	}
	for i := range out.V {
		out.V[i] += 0.03 * span * drift[i]
	}

	// 2) Transient anomalies: altitude illusions and pressure spikes.
	anomalyCount := maxInt(int(3*strength)+rng.IntN(3), 1)
	for a := 0; a < anomalyCount; a++ {
		center := intIn(rng, 5, maxInt(6, n-5))
		end := minInt(n, center+intIn(rng, 15, 60))
		if end <= center {
			continue
		}
		window := end - center
		amp := (0.5 + 0.8*rng.Float64()) * std * strength

		shape := rng.IntN(3)
		for i := 0; i < window; i++ {
			base := float64(i) / float64(maxInt(window-1, 1))
			var v float64
			switch shape {
			case 0: // bump
				v = base * (1 - base) * 4
			case 1: // dip
				v = -base * (1 - base) * 4
			default: // tilted ramp
				v = (base - 0.5) * 2
			}
			out.V[center+i] += amp * v
		}
	}

	// 3) Adaptive noise under a slow envelope.
	noiseSigma := 0.01 * span * strength
	envPhase := 2 * math.Pi * rng.Float64()
	for i, tn := range tNorm {
		env := 0.5 + 0.5*math.Sin(2*math.Pi*0.05*tn+envPhase)
		out.V[i] += gauss(rng, noiseSigma*env)
	}

	return out, nil
}
