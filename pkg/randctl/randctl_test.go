package randctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDeterministic(t *testing.T) {
	a := Stream("depth", 42)
	b := Stream("depth", 42)

	for i := 0; i < 64; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "draw %d diverged", i)
	}
}

func TestStreamIndependentPerName(t *testing.T) {
	a := Stream("depth", 42)
	b := Stream("lidar", 42)

	same := 0
	for i := 0; i < 64; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Zero(t, same, "streams with different names should not collide")
}

func TestStreamIndependentPerSeed(t *testing.T) {
	a := Stream("depth", 1)
	b := Stream("depth", 2)
	assert.NotEqual(t, a.Uint64(), b.Uint64())
}

func TestDeriveStable(t *testing.T) {
	s1 := Derive(42, "lidar")
	s2 := Derive(42, "lidar")
	require.Equal(t, s1, s2)

	assert.NotEqual(t, s1, Derive(42, "depth"))
	assert.NotEqual(t, s1, Derive(43, "lidar"))
}

func TestDefaultSeedUsable(t *testing.T) {
	a := Stream("depth", DefaultSeed)
	b := Stream("depth", DefaultSeed)
	assert.Equal(t, a.Float64(), b.Float64())
}
