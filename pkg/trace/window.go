package trace

import (
	"math"
)

// Result is the outcome of one extraction call on one trace.
type Result struct {
	Charge      float64
	ArrivalTime float64
	// WindowFirst and WindowLast are the integration bounds actually used.
	// Some strategies search for the window, so they may differ from the hint.
	WindowFirst      int
	WindowLast       int
	PeakValue        float64
	PeakPosition     int
	SaturatedSamples int
	// Clamped is set when a non-finite or vanishing charge was reset to 0.
	Clamped bool
	Pulses  []Pulse
	Fit     *FitResult
}

// clampCharge resets tiny or non-finite charges to zero.
func clampCharge(sum float64) (float64, bool) {
	if math.IsNaN(sum) || math.IsInf(sum, 0) || math.Abs(sum) < 1.e-10 {
		return 0, true
	}
	return sum, false
}

// boundWindow forces 0 <= first <= last <= n.
func boundWindow(first int, last int, n int) (int, int) {
	if first < 0 {
		first = 0
	}
	if last > n {
		last = n
	}
	if first > last {
		first = last
	}
	return first, last
}

func (r *Result) setPeak(t *Trace) {
	r.PeakValue, r.PeakPosition, r.SaturatedSamples = t.Max(0, t.Len())
}

// FixedWindow sums the pedestal-subtracted samples (raw samples if raw is set)
// in [first, last). Arrival time is the charge-weighted mean sample centre.
func FixedWindow(t *Trace, first int, last int, raw bool) Result {
	res := Result{}
	res.setPeak(t)
	first, last = boundWindow(first, last, t.Len())
	res.WindowFirst = first
	res.WindowLast = last

	ped := t.Pedestal
	if raw {
		ped = 0
	}
	sum := 0.
	tcharge := 0.
	for i := first; i < last; i++ {
		// CTA simulations only write samples above a certain signal
		if t.Samples[i] <= 0 {
			continue
		}
		v := t.Samples[i] - ped
		sum += v
		tcharge += (float64(i) + 0.5) * v
	}
	res.Charge, res.Clamped = clampCharge(sum)
	if res.Charge != 0 {
		res.ArrivalTime = tcharge / res.Charge
	}
	return res
}

// slideMax searches values for the start of the window of length w with the
// largest positive sum. Window starts are taken from [start, end). It returns
// the sum and the start position, or -1 if no window has a positive sum.
func slideMax(values []float64, start int, end int, w int) (float64, int) {
	n := len(values)
	if n == 0 || w <= 0 {
		return 0, -1
	}
	if w > n {
		w = n
	}
	if start < 0 {
		start = 0
	}
	// last position a window may start from
	if end > n-w+1 {
		end = n - w + 1
	}
	if start >= end {
		return 0, -1
	}

	sum := 0.
	for i := start; i < start+w; i++ {
		sum += values[i]
	}
	best := 0.
	first := -1
	for i := start; i < end; i++ {
		if sum > best {
			best = sum
			first = i
		}
		if i+w < n {
			sum = sum - values[i] + values[i+w]
		}
	}
	return best, first
}

// weightedTime returns the signal-weighted mean of (i + 0.5 + offset) over
// [first, last) and false if the weight sum is not positive.
func weightedTime(values []float64, first int, last int, offset float64) (float64, bool) {
	sum := 0.
	tsum := 0.
	for i := first; i < last; i++ {
		sum += values[i]
		tsum += (float64(i) + 0.5 + offset) * values[i]
	}
	if sum <= 0 {
		return 0, false
	}
	return tsum / sum, true
}

func (t *Trace) pedestalSubtracted(raw bool) []float64 {
	ped := t.Pedestal
	if raw {
		ped = 0
	}
	values := make([]float64, t.Len())
	for i := range values {
		values[i] = t.signal(i, ped)
	}
	return values
}

// SlidingWindow finds the window of the given length with the maximum sum,
// searching window starts in [searchStart, searchEnd). The charge is the sum
// of the best window; the arrival time is taken from a window twice as wide
// centred on it. Saturated traces are integrated from the window start to
// the end of the trace.
func SlidingWindow(t *Trace, searchStart int, searchEnd int, window int, raw bool) Result {
	res := Result{}
	res.setPeak(t)
	n := t.Len()
	if n == 0 || window <= 0 {
		return res
	}
	if window > n {
		window = n
	}

	values := t.pedestalSubtracted(raw)
	charge, first := slideMax(values, searchStart, searchEnd, window)
	if first < 0 {
		return res
	}
	last := first + window
	res.WindowFirst = first
	res.WindowLast = last

	if saturated, _ := t.Saturated(); saturated {
		charge = 0
		for i := first; i < n; i++ {
			charge += values[i]
		}
		res.WindowLast = n
	}
	res.Charge, res.Clamped = clampCharge(charge)
	if res.Charge == 0 {
		return res
	}

	wideFirst, wideLast := boundWindow(first-window/2, last+window-window/2, n)
	tzero, ok := weightedTime(values, wideFirst, wideLast, 0)
	if !ok {
		tzero, _ = weightedTime(values, first, last, 0)
	}
	// keep the time inside the searched range
	lo := float64(searchStart)
	if lo < 0 {
		lo = 0
	}
	hi := float64(searchEnd + window - 1)
	if tzero < lo {
		tzero = lo
	}
	if tzero > hi {
		tzero = hi
	}
	res.ArrivalTime = tzero
	return res
}

// PeakAmplitude reports the trace maximum as the charge.
func PeakAmplitude(t *Trace, raw bool) Result {
	res := Result{}
	res.setPeak(t)
	res.WindowFirst = 0
	res.WindowLast = t.Len()
	if res.PeakPosition < 0 {
		return res
	}
	res.ArrivalTime = float64(res.PeakPosition) + 0.5
	charge := res.PeakValue
	if raw {
		charge += t.Pedestal
	}
	if charge < 0 {
		charge = 0
	}
	res.Charge, res.Clamped = clampCharge(charge)
	return res
}
