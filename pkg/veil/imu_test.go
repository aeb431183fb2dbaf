package veil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataveil/pkg/randctl"
)

func sampleIMU(n int) IMUSeries {
	s := IMUSeries{
		T:  make([]float64, n),
		Gx: make([]float64, n), Gy: make([]float64, n), Gz: make([]float64, n),
		Ax: make([]float64, n), Ay: make([]float64, n), Az: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.T[i] = float64(i) * 0.01
		s.Gx[i] = 0.1 * math.Sin(float64(i)*0.2)
		s.Gy[i] = 0.05 * math.Cos(float64(i)*0.3)
		s.Az[i] = 9.81
	}
	return s
}

func TestIMUZeroStrengthIsIdentity(t *testing.T) {
	s := sampleIMU(100)
	out, err := IMU(s, 0, randctl.Stream("imu", 1))
	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func TestIMUDeterministic(t *testing.T) {
	s := sampleIMU(200)
	a, err := IMU(s, 1.0, randctl.Stream("imu", 42))
	require.NoError(t, err)
	b, err := IMU(s, 1.0, randctl.Stream("imu", 42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIMUChannelLengthsPreserved(t *testing.T) {
	s := sampleIMU(150)
	out, err := IMU(s, 1.5, randctl.Stream("imu", 3))
	require.NoError(t, err)
	for _, ch := range [][]float64{out.T, out.Gx, out.Gy, out.Gz, out.Ax, out.Ay, out.Az} {
		assert.Len(t, ch, 150)
	}
	// Timeline is never perturbed.
	assert.Equal(t, s.T, out.T)
}

func TestIMUFiniteAtHighStrength(t *testing.T) {
	s := sampleIMU(100)
	out, err := IMU(s, 10, randctl.Stream("imu", 5))
	require.NoError(t, err)
	for _, ch := range [][]float64{out.Gx, out.Gy, out.Gz, out.Ax, out.Ay, out.Az} {
		for _, v := range ch {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func TestIMUMismatchedChannels(t *testing.T) {
	s := sampleIMU(50)
	s.Gz = s.Gz[:49]
	_, err := IMU(s, 1.0, randctl.Stream("imu", 1))
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestIMUEmpty(t *testing.T) {
	out, err := IMU(IMUSeries{}, 1.0, randctl.Stream("imu", 1))
	require.NoError(t, err)
	assert.Empty(t, out.T)
}
