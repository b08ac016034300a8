package trace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterTransformRoundTrip(t *testing.T) {
	t.Parallel()
	inf := math.Inf(1)

	cases := []struct {
		name  string
		param Parameter
		value float64
	}{
		{"both bounds", Parameter{Lower: 0.01, Upper: 20}, 2.4},
		{"lower bound", Parameter{Lower: 0, Upper: inf}, 513.},
		{"upper bound", Parameter{Lower: -inf, Upper: 5}, -3.},
		{"free", Parameter{Lower: -inf, Upper: inf}, -7.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			u := tc.param.internal(tc.value)
			assert.InDelta(t, tc.value, tc.param.external(u), 1.e-9)
		})
	}
}

func TestParameterExternalStaysInBounds(t *testing.T) {
	t.Parallel()
	p := Parameter{Lower: 0, Upper: 20}
	for _, u := range []float64{-100, -3, 0, 1.5, 42} {
		v := p.external(u)
		assert.GreaterOrEqual(t, v, 0.)
		assert.LessOrEqual(t, v, 20.)
	}
	lower := Parameter{Lower: 3, Upper: math.Inf(1)}
	assert.GreaterOrEqual(t, lower.external(-17), 3.)
}

func TestSolverMinimize(t *testing.T) {
	t.Parallel()
	inf := math.Inf(1)
	f := func(p []float64) float64 {
		return (p[0]-3)*(p[0]-3) + 2*(p[1]+1)*(p[1]+1) + p[2]*p[2]
	}

	res, err := NewSolver().Minimize(f, []Parameter{
		{Name: "x", Value: 5, Lower: 0, Upper: 10},
		{Name: "y", Value: 2, Lower: -5, Upper: inf},
		{Name: "z", Value: 0.5, Fixed: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Free)
	assert.InDelta(t, 3., res.Values[0], 1.e-3)
	assert.InDelta(t, -1., res.Values[1], 1.e-3)
	assert.Equal(t, 0.5, res.Values[2])
	assert.InDelta(t, 0.25, res.Min, 1.e-5)
	assert.Equal(t, FitStatusGood, res.Status)
	assert.Greater(t, res.Evaluations, 0)
}

func TestSolverMinimumOnBound(t *testing.T) {
	t.Parallel()
	f := func(p []float64) float64 { return (p[0] + 4) * (p[0] + 4) }

	res, err := NewSolver().Minimize(f, []Parameter{{Name: "x", Value: 2, Lower: 0, Upper: 10}})
	require.NoError(t, err)
	assert.InDelta(t, 0., res.Values[0], 1.e-3)
}

func TestSolverAllFixed(t *testing.T) {
	t.Parallel()
	_, err := NewSolver().Minimize(func(p []float64) float64 { return p[0] }, []Parameter{{Value: 1, Fixed: true}})
	assert.ErrorIs(t, err, ErrNoFreeParameters)
}
