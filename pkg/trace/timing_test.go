package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymmetricLevels(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []float64{0.2, 0.5, 0.8, 1.0, 0.8, 0.5, 0.2}, SymmetricLevels(0.2, 0.5, 0.8, 1.0))
	assert.Equal(t, []float64{1.0}, SymmetricLevels(1.0))
}

func TestNewPulseTimingRejectsInvalidLevels(t *testing.T) {
	t.Parallel()

	cases := map[string][]float64{
		"empty":          nil,
		"even":           {0.5, 1.0, 0.5, 0.2},
		"centre not one": {0.2, 0.9, 0.2},
		"asymmetric":     {0.2, 0.5, 1.0, 0.6, 0.2},
		"not increasing": {0.5, 0.2, 1.0, 0.2, 0.5},
		"out of range":   {1.2, 1.0, 1.2},
	}
	for name, levels := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p, err := NewPulseTiming(levels)
			assert.ErrorIs(t, err, ErrInvalidLevels)
			assert.Nil(t, p)
		})
	}
}

func TestPulseTimingIndices(t *testing.T) {
	t.Parallel()
	p, err := NewPulseTiming(SymmetricLevels(0.2, 0.5, 0.8, 1.0))
	require.NoError(t, err)
	assert.Equal(t, 3, p.MaxIndex())
	assert.Equal(t, 1, p.TZeroIndex())
	assert.Equal(t, 5, p.WidthIndex())

	p, err = NewPulseTiming(SymmetricLevels(0.3, 1.0))
	require.NoError(t, err)
	assert.Equal(t, -1, p.TZeroIndex())
	assert.Equal(t, -1, p.WidthIndex())
}

func TestPulseTimingMonotonic(t *testing.T) {
	t.Parallel()
	p, err := NewPulseTiming(SymmetricLevels(0.1, 0.2, 0.5, 0.8, 0.9, 1.0))
	require.NoError(t, err)
	mid := p.MaxIndex()

	pulses := map[string]*Trace{
		"narrow":    gaussianTrace(48, 20., 90., 20.5, 1.2),
		"wide":      gaussianTrace(48, 20., 150., 24.5, 3.),
		"off-grid":  gaussianTrace(48, 20., 60., 17.2, 2.),
		"triangle":  NewTrace(0, trianglePulse(48, 24, 120, 6), 0., 1., 0.),
		"ped shift": gaussianTrace(48, 200., 40., 30.5, 2.5),
	}
	for name, tr := range pulses {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			timing, ok := p.Calculate(tr, 0, tr.Len(), 0, tr.Len())
			require.True(t, ok)
			require.Len(t, timing, 11)
			for i := 1; i <= mid; i++ {
				assert.LessOrEqual(t, timing[i-1], timing[i], "rising level %d", i)
			}
			for i := mid + 2; i < len(timing); i++ {
				assert.LessOrEqual(t, timing[i-1], timing[i], "width at level %d", i)
			}
			assert.Greater(t, timing[mid+1], 0.)
		})
	}
}

func TestPulseTimingGaussian(t *testing.T) {
	t.Parallel()
	p, err := NewPulseTiming(SymmetricLevels(0.2, 0.5, 0.8, 1.0))
	require.NoError(t, err)
	tr := gaussianTrace(64, 10., 80., 30.5, 1.5)

	timing, ok := p.Calculate(tr, 0, tr.Len(), 0, tr.Len())
	require.True(t, ok)
	assert.Equal(t, 30.5, timing[p.MaxIndex()])
	// half maximum of a Gaussian sits 1.177 sigma from the peak
	assert.InDelta(t, 30.5-1.177*1.5, timing[p.TZeroIndex()], 0.15)
	assert.InDelta(t, 2*1.177*1.5, timing[p.WidthIndex()], 0.3)
}

func TestPulseTimingNoPulse(t *testing.T) {
	t.Parallel()
	p, err := NewPulseTiming(SymmetricLevels(0.2, 0.5, 1.0))
	require.NoError(t, err)

	flat := NewTrace(0, []int{10, 10, 10, 10, 10}, 10., 1., 0.)
	timing, ok := p.Calculate(flat, 0, flat.Len(), 0, flat.Len())
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 0, 0.5, 0, 0}, timing)

	timing, ok = p.Calculate(flat, 3, 3, 0, flat.Len())
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, timing)
}
