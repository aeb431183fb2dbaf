package engine

import (
	"io"
	mrand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataveil/pkg/policy"
	"dataveil/pkg/profiles"
	"dataveil/pkg/structlog"
	"dataveil/pkg/veil"
)

func testEngine(rules []policy.Rule) *Engine {
	log := structlog.New("test", structlog.LevelError, io.Discard)
	return New(profiles.NewResolver(nil), policy.NewResolver(rules), 42, log)
}

func testGrid(rows, cols int) veil.Grid {
	g := veil.NewGrid(rows, cols)
	for i := range g.Data {
		g.Data[i] = float64(i%11) / 10
	}
	return g
}

func TestServeDepthRealView(t *testing.T) {
	e := testEngine([]policy.Rule{{Client: "ops", View: policy.ViewReal}})
	g := testGrid(16, 16)

	out, view, err := e.ServeDepth("ops", policy.TrustUntrusted, g)
	require.NoError(t, err)
	assert.Equal(t, policy.ViewReal, view)
	assert.Equal(t, g.Data, out.Data)
}

func TestServeDepthVeiledAndDeterministic(t *testing.T) {
	e := testEngine(nil)
	g := testGrid(32, 32)

	a, view, err := e.ServeDepth("partner", policy.TrustUntrusted, g)
	require.NoError(t, err)
	assert.Equal(t, policy.ViewVeiled, view)
	assert.NotEqual(t, g.Data, a.Data, "veiled output should differ from trusted input")

	b, _, err := e.ServeDepth("partner", policy.TrustUntrusted, g)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data, "same client and data must veil identically")
}

func TestServePerClientStreamsDiffer(t *testing.T) {
	e := testEngine(nil)
	g := testGrid(32, 32)

	a, _, err := e.ServeDepth("client-a", policy.TrustUntrusted, g)
	require.NoError(t, err)
	b, _, err := e.ServeDepth("client-b", policy.TrustUntrusted, g)
	require.NoError(t, err)
	assert.NotEqual(t, a.Data, b.Data, "distinct clients draw from distinct substreams")
}

func TestServeUnknownProfileSurfaces(t *testing.T) {
	e := testEngine([]policy.Rule{{Client: "c", View: policy.ViewVeiled, Profile: "no-such"}})
	_, _, err := e.ServeDepth("c", policy.TrustUntrusted, testGrid(8, 8))
	assert.ErrorIs(t, err, profiles.ErrUnknownProfile)
}

func TestServeLidarFailClosed(t *testing.T) {
	e := testEngine(nil)
	in := make([]float64, 360)
	for i := range in {
		in[i] = 1.5
	}
	out, view, err := e.ServeLidar("nobody", "", in)
	require.NoError(t, err)
	assert.Equal(t, policy.ViewVeiled, view)
	require.Len(t, out, 360)
}

func TestServeIMU(t *testing.T) {
	e := testEngine(nil)
	n := 100
	s := veil.IMUSeries{
		T:  make([]float64, n),
		Gx: make([]float64, n), Gy: make([]float64, n), Gz: make([]float64, n),
		Ax: make([]float64, n), Ay: make([]float64, n), Az: make([]float64, n),
	}
	out, view, err := e.ServeIMU("partner", policy.TrustSemiTrusted, s)
	require.NoError(t, err)
	assert.Equal(t, policy.ViewVeiled, view)
	assert.Len(t, out.Gz, n)
	assert.NotEqual(t, s.Gz, out.Gz)
}

func TestServeCustomSensor(t *testing.T) {
	e := testEngine(nil)
	err := e.Registry().Register("wheel", func(data []float64, strength float64, rng *mrand.Rand) ([]float64, error) {
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = v + strength
		}
		return out, nil
	})
	require.NoError(t, err)

	out, view, err := e.ServeCustom("partner", policy.TrustUntrusted, "wheel", []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, policy.ViewVeiled, view)
	assert.Equal(t, []float64{2, 3}, out)
}

func TestServeCustomUnregistered(t *testing.T) {
	e := testEngine(nil)
	_, _, err := e.ServeCustom("partner", policy.TrustUntrusted, "ghost-sensor", []float64{1})
	assert.ErrorIs(t, err, veil.ErrNotRegistered)
}

func TestServeFusion(t *testing.T) {
	e := testEngine(nil)
	in := map[string][]float64{
		"a": {1, 2, 3, 4, 5, 6, 7, 8},
		"b": {2, 2, 2, 2, 2, 2, 2, 2},
	}
	out, view, err := e.ServeFusion("partner", policy.TrustUntrusted, in)
	require.NoError(t, err)
	assert.Equal(t, policy.ViewVeiled, view)
	assert.Len(t, out["a"], 8)
	assert.Len(t, out["b"], 8)
}

func TestDecideMatchesPolicy(t *testing.T) {
	e := testEngine([]policy.Rule{{Client: "", Trust: policy.TrustTrusted, View: policy.ViewReal}})
	d := e.Decide("anyone", policy.TrustTrusted)
	assert.Equal(t, policy.ViewReal, d.View)
	d = e.Decide("anyone", policy.TrustUntrusted)
	assert.Equal(t, policy.ViewVeiled, d.View)
}
