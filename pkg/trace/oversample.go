package trace

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PoleZero is the constant of the differentiating filter that cancels the
// undershoot of AC-coupled front ends.
type PoleZero float64

const (
	PoleZeroNone PoleZero = 0
	// PoleZeroShort matches front ends with a short shaping time.
	PoleZeroShort PoleZero = 0.85
	// PoleZeroLong matches front ends with a long shaping time.
	PoleZeroLong PoleZero = 0.95
)

// pedestalEpsilon selects the pedestal-extraction mode of OversampledWindow.
const pedestalEpsilon = 1.e-5

type OversampleSettings struct {
	Factor   int
	PoleZero PoleZero
}

func DefaultOversampleSettings() OversampleSettings {
	return OversampleSettings{Factor: 4, PoleZero: PoleZeroShort}
}

// boxcar replaces every value by the forward mean over w values. Values past
// the end of the input count as zero.
func boxcar(values []float64, w int) []float64 {
	out := make([]float64, len(values))
	if w <= 1 {
		copy(out, values)
		return out
	}
	sum := 0.
	for i := 0; i < w && i < len(values); i++ {
		sum += values[i]
	}
	for i := range values {
		out[i] = sum / float64(w)
		sum -= values[i]
		if i+w < len(values) {
			sum += values[i+w]
		}
	}
	return out
}

// differentiate returns y[i] = s[i+1] - alpha*s[i]. The last value is 0.
func differentiate(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	for i := 0; i+1 < len(values); i++ {
		out[i] = values[i+1] - alpha*values[i]
	}
	return out
}

// filterOversampled upsamples by sample-and-hold and applies the smoothing and
// differentiating filter chain. It returns the filtered samples and the
// delay (in oversampled units) the chain introduces.
func filterOversampled(values []float64, factor int, alpha float64) ([]float64, float64) {
	up := make([]float64, len(values)*factor)
	for i, v := range values {
		for j := 0; j < factor; j++ {
			up[i*factor+j] = v
		}
	}
	w := 2 * factor
	filtered := boxcar(up, w)
	filtered = differentiate(filtered, alpha)
	filtered = boxcar(boxcar(filtered, w), w)

	delay := 3.*float64(w-1)/2. + 1.
	return filtered, delay
}

// OversampledWindow runs the sliding-window search on an upsampled,
// smoothed and differentiated copy of the trace. Window starts are searched in
// [searchStart, searchEnd) native samples. Charge is normalised back to native
// units and the arrival time is given in native samples.
//
// A pedestal of (almost) zero switches to pedestal-extraction mode: the last
// window (two windows for low-gain traces) of filtered samples is integrated
// without a search.
func OversampledWindow(t *Trace, searchStart int, searchEnd int, window int, s OversampleSettings) Result {
	res := Result{}
	res.setPeak(t)
	n := t.Len()
	if n == 0 || window <= 0 {
		return res
	}
	if window > n {
		window = n
	}
	factor := s.Factor
	if factor < 1 {
		factor = 1
	}
	alpha := float64(s.PoleZero)
	gain := float64(factor) * (1. - alpha)
	if gain <= 0 {
		gain = float64(factor)
	}

	values := t.pedestalSubtracted(false)
	filtered, delay := filterOversampled(values, factor, alpha)
	w := window * factor

	if math.Abs(t.Pedestal) < pedestalEpsilon {
		if t.HiLo {
			w *= 2
		}
		if w > len(filtered) {
			w = len(filtered)
		}
		tail := filtered[len(filtered)-w:]
		res.Charge, res.Clamped = clampCharge(floats.Sum(tail) / gain)
		res.WindowFirst = n - w/factor
		res.WindowLast = n
		if tzero, ok := weightedTime(filtered, len(filtered)-w, len(filtered), delay); ok {
			res.ArrivalTime = tzero / float64(factor)
		}
		return res
	}

	offset := int(math.Round(delay))
	charge, first := slideMax(filtered, searchStart*factor-offset, searchEnd*factor-offset, w)
	if first < 0 {
		return res
	}
	res.Charge, res.Clamped = clampCharge(charge / gain)

	res.WindowFirst, res.WindowLast = boundWindow(
		int(math.Floor((float64(first)+delay)/float64(factor))),
		int(math.Ceil((float64(first+w)+delay)/float64(factor))),
		n)
	if tzero, ok := weightedTime(filtered, first, first+w, delay); ok {
		res.ArrivalTime = tzero / float64(factor)
	}
	return res
}
