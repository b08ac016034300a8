package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowTrianglePulse(t *testing.T) {
	t.Parallel()
	tr := NewTrace(0, trianglePulse(32, 16, 100, 4), 0., 1., 0.)

	res := FixedWindow(tr, 14, 18, false)
	assert.InDelta(t, 300., res.Charge, 1.e-9)
	assert.InDelta(t, 16., res.ArrivalTime, 0.5)
	assert.Equal(t, 14, res.WindowFirst)
	assert.Equal(t, 18, res.WindowLast)
	assert.Equal(t, 100., res.PeakValue)
	assert.Equal(t, 16, res.PeakPosition)
}

func TestFixedWindowDegenerate(t *testing.T) {
	t.Parallel()
	tr := gaussianTrace(16, 10., 50., 8., 1.)

	cases := []struct {
		name        string
		first, last int
		wantFirst   int
		wantLast    int
	}{
		{"empty", 5, 5, 5, 5},
		{"reversed", 9, 4, 4, 4},
		{"past end", 12, 40, 12, 16},
		{"negative start", -3, 2, 0, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := FixedWindow(tr, tc.first, tc.last, false)
			assert.Equal(t, tc.wantFirst, res.WindowFirst)
			assert.Equal(t, tc.wantLast, res.WindowLast)
			assert.LessOrEqual(t, res.WindowFirst, res.WindowLast)
			if tc.wantFirst == tc.wantLast {
				assert.Zero(t, res.Charge)
				assert.True(t, res.Clamped)
			}
		})
	}
}

func TestFixedWindowRaw(t *testing.T) {
	t.Parallel()
	tr := NewTrace(0, []int{10, 10, 30, 10}, 10., 1., 0.)
	assert.Equal(t, 20., FixedWindow(tr, 0, 4, false).Charge)
	assert.Equal(t, 60., FixedWindow(tr, 0, 4, true).Charge)
}

func TestBelowPedestalGivesZeroCharge(t *testing.T) {
	t.Parallel()

	traces := map[string]*Trace{
		"at pedestal":   NewTrace(0, []int{20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20}, 20., 2., 0.),
		"not simulated": NewTrace(0, make([]int, 12), 20., 2., 0.),
		"zero pedestal": NewTrace(0, make([]int, 12), 0., 2., 0.),
	}
	for name, tr := range traces {
		for _, m := range Methods() {
			t.Run(name+"/"+m.String(), func(t *testing.T) {
				t.Parallel()
				s := DefaultSettings()
				s.Method = m
				e, err := NewExtractor(s)
				require.NoError(t, err)

				res := e.Extract(tr, 2, 9)
				assert.Zero(t, res.Charge)
				assert.LessOrEqual(t, res.PeakValue, 0.)
				assert.LessOrEqual(t, res.WindowFirst, res.WindowLast)
				assert.LessOrEqual(t, res.WindowLast, tr.Len())
			})
		}
	}
}

func TestSlidingWindowSinglePositionMatchesFixed(t *testing.T) {
	t.Parallel()
	tr := gaussianTrace(40, 15., 60., 20., 2.)

	for _, start := range []int{5, 14, 17, 25} {
		fixed := FixedWindow(tr, start, start+7, false)
		sliding := SlidingWindow(tr, start, start+1, 7, false)
		assert.Equal(t, fixed.Charge, sliding.Charge, "start %d", start)
		assert.Equal(t, fixed.WindowFirst, sliding.WindowFirst)
		assert.Equal(t, fixed.WindowLast, sliding.WindowLast)
	}
}

// Samples below the pedestal are summed as they are, so a fixed window over
// them gives a negative charge.
func TestFixedWindowBelowPedestalIsNegative(t *testing.T) {
	t.Parallel()
	samples := make([]int, 12)
	for i := range samples {
		samples[i] = 18
	}
	tr := NewTrace(0, samples, 20., 2., 0.)

	res := FixedWindow(tr, 2, 9, false)
	assert.Equal(t, -14., res.Charge)
	assert.False(t, res.Clamped)
	assert.LessOrEqual(t, res.PeakValue, 0.)

	e, err := NewFitExtractor(FitGrisu, DefaultFitThreshold, nil)
	require.NoError(t, err)
	fitted := e.Extract(tr, 2, 9, false)
	require.NotNil(t, fitted.Fit)
	assert.False(t, fitted.Fit.Fitted)
	assert.Equal(t, -14., fitted.Charge)
}

// The sliding window only accepts windows with a positive sum. Over a single
// start position it matches the fixed window unless that sum is negative, in
// which case it reports no charge.
func TestSlidingWindowNegativeSum(t *testing.T) {
	t.Parallel()
	samples := make([]int, 12)
	for i := range samples {
		samples[i] = 18
	}
	tr := NewTrace(0, samples, 20., 2., 0.)

	fixed := FixedWindow(tr, 2, 9, false)
	sliding := SlidingWindow(tr, 2, 3, 7, false)
	assert.Negative(t, fixed.Charge)
	assert.Zero(t, sliding.Charge)
	assert.Zero(t, sliding.ArrivalTime)
	assert.LessOrEqual(t, sliding.WindowFirst, sliding.WindowLast)
}

func TestSlidingWindowFindsPulse(t *testing.T) {
	t.Parallel()
	tr := gaussianTrace(40, 15., 60., 25.5, 1.5)

	res := SlidingWindow(tr, 0, tr.Len(), 7, false)
	assert.Equal(t, 22, res.WindowFirst)
	assert.Equal(t, 29, res.WindowLast)
	assert.InDelta(t, 25.5, res.ArrivalTime, 0.05)
	assert.InEpsilon(t, 60.*1.5*2.5066, res.Charge, 0.05)
}

func TestSlidingWindowSaturated(t *testing.T) {
	t.Parallel()
	samples := []int{10, 10, 10, 10, 255, 255, 255, 200, 150, 100, 60, 30}
	tr := NewTrace(0, samples, 10., 1., 0.)
	tr.SaturationLimit = 250

	res := SlidingWindow(tr, 0, tr.Len(), 3, false)
	assert.Equal(t, 4, res.WindowFirst)
	assert.Equal(t, tr.Len(), res.WindowLast)

	want := 0.
	for _, s := range samples[4:] {
		want += float64(s) - 10.
	}
	assert.Equal(t, want, res.Charge)
}

func TestSlidingWindowSearchClampedToTrace(t *testing.T) {
	t.Parallel()
	tr := gaussianTrace(20, 5., 40., 18.5, 1.)

	res := SlidingWindow(tr, 0, 100, 5, false)
	assert.Equal(t, 15, res.WindowFirst)
	assert.Equal(t, 20, res.WindowLast)
}

func TestPeakAmplitude(t *testing.T) {
	t.Parallel()
	tr := NewTrace(0, []int{10, 14, 42, 30, 12}, 10., 1., 0.)

	res := PeakAmplitude(tr, false)
	assert.Equal(t, 32., res.Charge)
	assert.Equal(t, 2.5, res.ArrivalTime)
	assert.Equal(t, 42., PeakAmplitude(tr, true).Charge)
}

func TestOversampledConvergesToSlidingWindow(t *testing.T) {
	t.Parallel()
	tr := gaussianTrace(64, 10., 80., 30.5, 1.5)
	sliding := SlidingWindow(tr, 0, tr.Len(), 10, false)

	for _, factor := range []int{1, 2, 4} {
		res := OversampledWindow(tr, 0, tr.Len(), 10, OversampleSettings{Factor: factor, PoleZero: PoleZeroNone})
		assert.InEpsilon(t, sliding.Charge, res.Charge, 0.03, "factor %d", factor)
		assert.InDelta(t, sliding.ArrivalTime, res.ArrivalTime, 0.2, "factor %d", factor)
		assert.LessOrEqual(t, res.WindowFirst, res.WindowLast)
		assert.LessOrEqual(t, res.WindowLast, tr.Len())
	}
}

func TestOversampledPoleZero(t *testing.T) {
	t.Parallel()
	tr := gaussianTrace(64, 10., 80., 30.5, 1.5)

	res := OversampledWindow(tr, 0, tr.Len(), 10, DefaultOversampleSettings())
	assert.Greater(t, res.Charge, 0.)
	assert.InDelta(t, 30.5, res.ArrivalTime, 3.)
}

func TestOversampledPedestalMode(t *testing.T) {
	t.Parallel()
	samples := make([]int, 32)
	for i := range samples {
		samples[i] = 12
	}
	tr := NewTrace(0, samples, 0., 1., 0.)

	res := OversampledWindow(tr, 0, tr.Len(), 4, OversampleSettings{Factor: 2, PoleZero: PoleZeroNone})
	assert.Equal(t, 28, res.WindowFirst)
	assert.Equal(t, 32, res.WindowLast)
	assert.Greater(t, res.Charge, 0.)

	tr.HiLo = true
	res = OversampledWindow(tr, 0, tr.Len(), 4, OversampleSettings{Factor: 2, PoleZero: PoleZeroNone})
	assert.Equal(t, 24, res.WindowFirst)
}

func TestBoxcarPreservesInteriorSum(t *testing.T) {
	t.Parallel()
	values := []float64{0, 0, 0, 0, 1, 3, 1, 0, 0, 0, 0}
	out := boxcar(values, 3)
	sum := 0.
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 5., sum, 1.e-12)
	assert.InDelta(t, 4./3., out[3], 1.e-12)
	assert.InDelta(t, 5./3., out[4], 1.e-12)
}
