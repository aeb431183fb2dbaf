package veil

import (
	mrand "math/rand/v2"
)

// IMU veils gyro and accelerometer channels with slow drift, fake impact
// spikes and per-sample jitter. Gyro and accel channels are perturbed
// independently; channel lengths are preserved. Channels must share the
// timeline length or ErrInvalidShape is returned.
func IMU(s IMUSeries, strength float64, rng *mrand.Rand) (IMUSeries, error) {
	if err := s.validate(); err != nil {
		return IMUSeries{}, err
	}
	out := s.Clone()
	n := len(out.T)
	if n == 0 || strength <= 0 {
		return out, nil
	}

	// 1) Slow drift on selected channels.
	for i := 0; i < n; i++ {
		f := float64(i) / float64(maxInt(n-1, 1))
		out.Gz[i] += 0.3 * strength * f
		out.Ax[i] += 1.0 * strength * f
		out.Ay[i] += -0.7 * strength * f
	}

	// 2) Fake impact spikes across gyro and accel.
	gyroLevels := []float64{-1.8, -1.2, 1.2, 1.8}
	for i := 0; i < int(6*strength); i++ {
		idx := intIn(rng, 5, maxInt(6, n-5))
		end := minInt(n, idx+intIn(rng, 3, 10))

		gSpike := gyroLevels[rng.IntN(len(gyroLevels))]
		axSpike := pick(rng, -4.0, 4.0)
		aySpike := pick(rng, -3.0, 3.0)
		azSpike := pick(rng, -6.0, 6.0)

		for j := idx; j < end; j++ {
			out.Gx[j] += gSpike
			out.Gy[j] += gSpike * 0.7
			out.Ax[j] += axSpike
			out.Ay[j] += aySpike
			out.Az[j] += azSpike
		}
	}

	// 3) High-frequency jitter, gyro and accel scaled separately.
	for _, ch := range [][]float64{out.Gx, out.Gy, out.Gz} {
		addNoise(rng, ch, 0.05*strength)
	}
	for _, ch := range [][]float64{out.Ax, out.Ay, out.Az} {
		addNoise(rng, ch, 0.2*strength)
	}

	return out, nil
}

func addNoise(rng *mrand.Rand, ch []float64, sigma float64) {
	for i := range ch {
		ch[i] += gauss(rng, sigma)
	}
}

func pick(rng *mrand.Rand, a, b float64) float64 {
	if rng.Float64() < 0.5 {
		return a
	}
	return b
}
