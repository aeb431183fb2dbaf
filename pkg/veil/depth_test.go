package veil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataveil/pkg/randctl"
)

func constantGrid(rows, cols int, v float64) Grid {
	g := NewGrid(rows, cols)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

func rampGrid(rows, cols int) Grid {
	g := NewGrid(rows, cols)
	for i := range g.Data {
		g.Data[i] = float64(i) / float64(len(g.Data)-1)
	}
	return g
}

func TestDepthZeroStrengthIsIdentity(t *testing.T) {
	g := constantGrid(64, 96, 0.5)
	out, err := Depth(g, 0, randctl.Stream("depth", 1))
	require.NoError(t, err)
	require.Equal(t, 64, out.Rows)
	require.Equal(t, 96, out.Cols)
	assert.Equal(t, g.Data, out.Data)
}

func TestDepthShapePreserved(t *testing.T) {
	g := rampGrid(32, 48)
	out, err := Depth(g, 1.0, randctl.Stream("depth", 7))
	require.NoError(t, err)
	assert.Equal(t, g.Rows, out.Rows)
	assert.Equal(t, g.Cols, out.Cols)
	assert.Len(t, out.Data, len(g.Data))
}

func TestDepthDeterministic(t *testing.T) {
	g := rampGrid(40, 40)
	a, err := Depth(g, 1.0, randctl.Stream("depth", 42))
	require.NoError(t, err)
	b, err := Depth(g, 1.0, randctl.Stream("depth", 42))
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestDepthSubstreamIndependence(t *testing.T) {
	g := rampGrid(40, 40)
	a, err := Depth(g, 1.0, randctl.Stream("depth", randctl.Derive(42, "depth")))
	require.NoError(t, err)
	b, err := Depth(g, 1.0, randctl.Stream("depth", randctl.Derive(42, "thermal")))
	require.NoError(t, err)
	assert.NotEqual(t, a.Data, b.Data, "salted substreams must diverge")
}

func TestDepthStaysInRange(t *testing.T) {
	g := rampGrid(32, 32)
	lo, hi := minMax(g.Data)
	out, err := Depth(g, 10, randctl.Stream("depth", 3))
	require.NoError(t, err)
	for _, v := range out.Data {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		require.GreaterOrEqual(t, v, lo-1e-9)
		require.LessOrEqual(t, v, hi+1e-9)
	}
}

func TestDepthEmptyInput(t *testing.T) {
	out, err := Depth(Grid{}, 1.0, randctl.Stream("depth", 1))
	require.NoError(t, err)
	assert.True(t, out.Empty())
}

func TestDepthInvalidShape(t *testing.T) {
	bad := Grid{Rows: 2, Cols: 2, Data: make([]float64, 3)}
	_, err := Depth(bad, 1.0, randctl.Stream("depth", 1))
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestDepthDoesNotMutateInput(t *testing.T) {
	g := rampGrid(16, 16)
	orig := g.Clone()
	_, err := Depth(g, 1.5, randctl.Stream("depth", 9))
	require.NoError(t, err)
	assert.Equal(t, orig.Data, g.Data)
}
