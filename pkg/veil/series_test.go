package veil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataveil/pkg/randctl"
)

func sampleSeries(n int, base, amp float64) Series {
	s := Series{T: make([]float64, n), V: make([]float64, n)}
	for i := 0; i < n; i++ {
		s.T[i] = float64(i) * 0.05
		s.V[i] = base + amp*math.Sin(float64(i)*0.1)
	}
	return s
}

func TestRFZeroStrengthIsIdentity(t *testing.T) {
	s := sampleSeries(200, -60, 5)
	out, err := RF(s, 0, randctl.Stream("rf", 1))
	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func TestRFDeterministicAndFinite(t *testing.T) {
	s := sampleSeries(300, -60, 5)
	a, err := RF(s, 1.0, randctl.Stream("rf", 42))
	require.NoError(t, err)
	b, err := RF(s, 1.0, randctl.Stream("rf", 42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, s.V, a.V)

	for _, v := range a.V {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	assert.Equal(t, s.T, a.T)
}

func TestRFMismatchedLengths(t *testing.T) {
	s := Series{T: make([]float64, 10), V: make([]float64, 9)}
	_, err := RF(s, 1.0, randctl.Stream("rf", 1))
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestRFEmpty(t *testing.T) {
	out, err := RF(Series{}, 1.0, randctl.Stream("rf", 1))
	require.NoError(t, err)
	assert.Empty(t, out.V)
}

func TestUltrasonicNoNegativeDistances(t *testing.T) {
	s := sampleSeries(250, 1.2, 0.8)
	out, err := Ultrasonic(s, 3.0, randctl.Stream("ultrasonic", 42))
	require.NoError(t, err)
	require.Len(t, out.V, 250)
	for _, v := range out.V {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestUltrasonicDeterministic(t *testing.T) {
	s := sampleSeries(150, 2.0, 0.4)
	a, err := Ultrasonic(s, 1.0, randctl.Stream("ultrasonic", 9))
	require.NoError(t, err)
	b, err := Ultrasonic(s, 1.0, randctl.Stream("ultrasonic", 9))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUltrasonicZeroStrengthIsIdentity(t *testing.T) {
	s := sampleSeries(100, 2.0, 0.4)
	out, err := Ultrasonic(s, 0, randctl.Stream("ultrasonic", 1))
	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func TestBarometerDeterministicAndFinite(t *testing.T) {
	s := sampleSeries(300, 1013.25, 0.6)
	a, err := Barometer(s, 1.0, randctl.Stream("barometer", 42))
	require.NoError(t, err)
	b, err := Barometer(s, 1.0, randctl.Stream("barometer", 42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, s.V, a.V)

	for _, v := range a.V {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestBarometerZeroStrengthIsIdentity(t *testing.T) {
	s := sampleSeries(80, 1013.25, 0.6)
	out, err := Barometer(s, 0, randctl.Stream("barometer", 1))
	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func sampleMag(n int) MagSeries {
	s := MagSeries{
		T:  make([]float64, n),
		Mx: make([]float64, n), My: make([]float64, n), Mz: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.T[i] = float64(i) * 0.02
		s.Mx[i] = 22 + 0.5*math.Sin(float64(i)*0.05)
		s.My[i] = -4 + 0.3*math.Cos(float64(i)*0.07)
		s.Mz[i] = 43
	}
	return s
}

func TestMagnetometerDeterministic(t *testing.T) {
	s := sampleMag(200)
	a, err := Magnetometer(s, 1.0, randctl.Stream("mag", 42))
	require.NoError(t, err)
	b, err := Magnetometer(s, 1.0, randctl.Stream("mag", 42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMagnetometerAxesPerturbed(t *testing.T) {
	s := sampleMag(200)
	out, err := Magnetometer(s, 1.0, randctl.Stream("mag", 7))
	require.NoError(t, err)
	assert.NotEqual(t, s.Mx, out.Mx)
	assert.NotEqual(t, s.My, out.My)
	assert.NotEqual(t, s.Mz, out.Mz)
	assert.Equal(t, s.T, out.T)
}

func TestMagnetometerMismatchedAxes(t *testing.T) {
	s := sampleMag(50)
	s.My = s.My[:49]
	_, err := Magnetometer(s, 1.0, randctl.Stream("mag", 1))
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestMagnetometerZeroStrengthIsIdentity(t *testing.T) {
	s := sampleMag(60)
	out, err := Magnetometer(s, 0, randctl.Stream("mag", 1))
	require.NoError(t, err)
	assert.Equal(t, s, out)
}
