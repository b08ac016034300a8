package cleaning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineGraph(t *testing.T, x []float64, y []float64) *NeighbourGraph {
	t.Helper()
	neighbours := make([][]int, len(x))
	for i := range neighbours {
		if i > 0 {
			neighbours[i] = append(neighbours[i], i-1)
		}
		if i < len(x)-1 {
			neighbours[i] = append(neighbours[i], i+1)
		}
	}
	g, err := NewNeighbourGraph(neighbours, x, y, 0)
	require.NoError(t, err)
	return g
}

func TestEstimateTimeGradient(t *testing.T) {
	t.Parallel()

	t.Run("along x", func(t *testing.T) {
		t.Parallel()
		x := []float64{0, 1, 2, 3}
		g := lineGraph(t, x, make([]float64, 4))
		pixels := make([]Pixel, 4)
		for i := range pixels {
			pixels[i] = Pixel{Image: true, Charge: 10. + float64(i), Time: 1. + 2.*x[i]}
		}
		grad, ok := EstimateTimeGradient(g, pixels)
		require.True(t, ok)
		assert.True(t, grad.Known())
		assert.InDelta(t, 1., math.Abs(grad.CosPhi), 1.e-9)
		assert.InDelta(t, 2., grad.Gradient*grad.CosPhi, 1.e-9)
		assert.InDelta(t, 1., grad.Intercept, 1.e-9)
	})

	t.Run("diagonal", func(t *testing.T) {
		t.Parallel()
		x := []float64{0, 1, 2, 3, 4}
		g := lineGraph(t, x, x)
		pixels := make([]Pixel, 5)
		for i := range pixels {
			pixels[i] = Pixel{Border: true, Charge: 5., Time: 4. + math.Sqrt2*x[i]}
		}
		grad, ok := EstimateTimeGradient(g, pixels)
		require.True(t, ok)
		assert.InDelta(t, math.Pi/4, math.Atan2(grad.SinPhi, grad.CosPhi), 1.e-9)
		assert.InDelta(t, 1., grad.Gradient, 1.e-9)
		assert.InDelta(t, 4., grad.Intercept, 1.e-9)
	})

	t.Run("too few pixels", func(t *testing.T) {
		t.Parallel()
		g := lineGraph(t, []float64{0, 1, 2}, make([]float64, 3))
		pixels := []Pixel{{Image: true, Charge: 10}, {Image: true, Charge: 10, Time: 1}, {Charge: 10, Time: 2}}
		_, ok := EstimateTimeGradient(g, pixels)
		assert.False(t, ok)
	})

	t.Run("no extent", func(t *testing.T) {
		t.Parallel()
		g := lineGraph(t, make([]float64, 3), make([]float64, 3))
		pixels := []Pixel{{Image: true, Charge: 1}, {Image: true, Charge: 1}, {Image: true, Charge: 1}}
		_, ok := EstimateTimeGradient(g, pixels)
		assert.False(t, ok)
	})
}

func TestCleanTraceCorrelation(t *testing.T) {
	t.Parallel()
	g := HexagonalGraph(2, 1.)
	pulse := []float64{0, 1, 4, 9, 6, 3, 1, 0, 0, 0}
	scaled := func(f float64) []float64 {
		out := make([]float64, len(pulse))
		for i, v := range pulse {
			out[i] = f * v
		}
		return out
	}

	pixels := make([]Pixel, g.Len())
	for _, i := range []int{0, 1, 2, 3, 4} {
		pixels[i] = Pixel{Image: true, Charge: 40, PedVar: 1, Trace: scaled(4.)}
	}
	// ring pixels next to the image
	pixels[5] = Pixel{Charge: 5, PedVar: 1, Trace: scaled(0.5)}
	pixels[6] = Pixel{Charge: 5, PedVar: 1, Trace: scaled(-0.5)}
	pixels[10] = Pixel{Charge: 1, PedVar: 1, Trace: scaled(0.1)}

	p := DefaultParams()
	added := CleanTraceCorrelation(g, pixels, p)
	assert.Equal(t, 1, added)
	assert.True(t, pixels[5].Border)
	assert.InDelta(t, 1., pixels[5].Correlation, 1.e-9)
	assert.False(t, pixels[6].Border)
	// correlated but below the signal to noise threshold
	assert.False(t, pixels[10].Border)

	t.Run("image too large", func(t *testing.T) {
		t.Parallel()
		local := append([]Pixel(nil), pixels...)
		local[5].Border = false
		q := DefaultParams()
		q.MaxImagePixels = 5
		assert.Zero(t, CleanTraceCorrelation(g, local, q))
	})
}
