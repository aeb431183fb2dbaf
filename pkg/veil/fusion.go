package veil

import (
	"math"
	mrand "math/rand/v2"
	"sort"
)

// FusionSeries applies a correlated veil across aligned 1-D sensor series.
// Three shared latent processes (a random walk, a multi-frequency sinusoid,
// and smoothed noise) are mixed into each series with its own normalized
// random weights, scaled by that series' statistics. The shared latents make
// the distortion look environmental: every stream moves together, which
// defeats per-stream denoising of exported logs.
//
// All series are truncated to the shortest length; sensors are processed in
// sorted name order so the draw sequence is deterministic.
func FusionSeries(sensors map[string][]float64, strength float64, rng *mrand.Rand) (map[string][]float64, error) {
	if len(sensors) == 0 {
		return nil, ErrInvalidShape
	}

	names := make([]string, 0, len(sensors))
	n := math.MaxInt
	for name, arr := range sensors {
		names = append(names, name)
		if len(arr) < n {
			n = len(arr)
		}
	}
	sort.Strings(names)

	out := make(map[string][]float64, len(sensors))
	if n == 0 || strength <= 0 {
		for _, name := range names {
			out[name] = cloneSlice(sensors[name][:n])
		}
		return out, nil
	}

	// Latent 1: random walk (slow drift).
	latent1 := make([]float64, n)
	cum := 0.0
	for i := range latent1 {
		cum += gauss(rng, 0.05*strength)
		latent1[i] = cum
	}

	// Latent 2: multi-frequency sinusoid.
	phase1 := 2 * math.Pi * rng.Float64()
	phase2 := 2 * math.Pi * rng.Float64()
	latent2 := make([]float64, n)
	for i := range latent2 {
		t := float64(i) / float64(maxInt(n-1, 1))
		latent2[i] = 0.7*math.Sin(2*math.Pi*0.3*strength*t+phase1) +
			0.5*math.Cos(2*math.Pi*0.8*strength*t+phase2)
	}

	// Latent 3: band-limited noise (moving-average smoothed).
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = rng.NormFloat64()
	}
	latent3 := smooth(raw, 5)

	for _, name := range names {
		base := cloneSlice(sensors[name][:n])
		lo, hi := minMax(base)
		span := nonZeroSpan(hi-lo, 1e-3)
		std := nonZeroSpan(stddev(base), 1e-3)

		w := unitVec3(rng)
		scale := (0.2*span + 0.8*std) * strength
		for i := range base {
			latent := w[0]*latent1[i] + w[1]*latent2[i] + w[2]*latent3[i]
			base[i] += scale * latent
		}
		out[name] = base
	}

	return out, nil
}

// smooth applies a centered moving average of the given window.
func smooth(v []float64, window int) []float64 {
	out := make([]float64, len(v))
	half := window / 2
	for i := range v {
		lo := maxInt(0, i-half)
		hi := minInt(len(v), i+half+1)
		sum := 0.0
		for j := lo; j < hi; j++ {
			sum += v[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
