package trace

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
)

// DefaultFitThreshold is the minimum peak, in units of the pedestal RMS, for
// a trace to be fitted.
const DefaultFitThreshold = 5.

const (
	peakScanStep        = 0.01
	bisectSteps         = 60
	quadPointsPerSample = 8
)

// FitResult describes the pulse-shape fit of one trace. If Fitted is false
// all fit quantities are zero.
type FitResult struct {
	Function     FitFunction
	Fitted       bool
	Status       int
	Chi2         float64
	Params       []float64
	RiseTime     float64
	FallTime     float64
	Norm         float64
	PeakValue    float64
	PeakPosition float64
	// Samples is the trace length; the fitted function is defined on [0, Samples].
	Samples int
}

// Good is true for fits with a fully positive-definite error matrix.
func (r *FitResult) Good() bool {
	return r.Fitted && r.Status >= FitStatusGood
}

func (r *FitResult) eval(x float64) float64 {
	return r.Function.Eval(x, r.Params)
}

// crossing returns the x in [a, b] where the fitted function reaches y. The
// function must be monotonic on the interval; if y is not bracketed the
// nearer end is returned.
func (r *FitResult) crossing(y float64, a float64, b float64) float64 {
	fa := r.eval(a) - y
	fb := r.eval(b) - y
	if fa == 0 {
		return a
	}
	if fb == 0 {
		return b
	}
	if fa*fb > 0 {
		if math.Abs(fa) < math.Abs(fb) {
			return a
		}
		return b
	}
	for i := 0; i < bisectSteps; i++ {
		m := 0.5 * (a + b)
		fm := r.eval(m) - y
		if fm == 0 {
			return m
		}
		if fa*fm < 0 {
			b = m
		} else {
			a, fa = m, fm
		}
	}
	return 0.5 * (a + b)
}

// RiseTimeAt is the time the rising edge takes from fraction ystart to ystop
// of the fitted maximum, or -1 for fractions outside [0, 1].
func (r *FitResult) RiseTimeAt(ystart float64, ystop float64) float64 {
	if !r.Fitted || ystart < 0 || ystart > 1 || ystop < 0 || ystop > 1 {
		return -1
	}
	t1 := r.crossing(ystart*r.PeakValue, 0, r.PeakPosition)
	t2 := r.crossing(ystop*r.PeakValue, 0, r.PeakPosition)
	return t2 - t1
}

// FallTimeAt is the time the falling edge takes from fraction ystart to ystop
// of the fitted maximum, or -1 for fractions outside [0, 1].
func (r *FitResult) FallTimeAt(ystart float64, ystop float64) float64 {
	if !r.Fitted || ystart < 0 || ystart > 1 || ystop < 0 || ystop > 1 {
		return -1
	}
	end := float64(r.Samples)
	t1 := r.crossing(ystart*r.PeakValue, r.PeakPosition, end)
	t2 := r.crossing(ystop*r.PeakValue, r.PeakPosition, end)
	return t2 - t1
}

// Width is the full width at half maximum of the fitted pulse.
func (r *FitResult) Width() float64 {
	if !r.Fitted {
		return 0
	}
	half := 0.5 * r.PeakValue
	return r.crossing(half, r.PeakPosition, float64(r.Samples)) - r.crossing(half, 0, r.PeakPosition)
}

// TZero is the rising half-maximum time of the fitted pulse.
func (r *FitResult) TZero() float64 {
	if !r.Fitted {
		return 0
	}
	return r.crossing(0.5*r.PeakValue, 0, r.PeakPosition)
}

// Integral integrates the fitted pulse over [first, last).
func (r *FitResult) Integral(first int, last int) float64 {
	sum := 0.
	for i := first; i < last; i++ {
		sum += quad.Fixed(r.eval, float64(i), float64(i+1), quadPointsPerSample, nil, 0)
	}
	return sum
}

// FitExtractor fits a pulse shape to the trace and integrates the fitted
// function. Traces that are not fitted fall back to the fixed-window sum.
type FitExtractor struct {
	function  FitFunction
	threshold float64
	solver    *Solver
}

func NewFitExtractor(function FitFunction, threshold float64, solver *Solver) (*FitExtractor, error) {
	if _, ok := fitFunctionNames[function]; !ok {
		return nil, ErrUnknownFitFunction
	}
	if solver == nil {
		solver = NewSolver()
	}
	return &FitExtractor{
		function:  function,
		threshold: threshold,
		solver:    solver,
	}, nil
}

// sigma is the uncertainty assigned to one sample: signal plus pedestal noise.
func sigma(v float64, pedrms float64) float64 {
	s := math.Sqrt(math.Abs(v)+pedrms*pedrms) / 2.
	if s <= 0 {
		return 1.
	}
	return s
}

// Fit fits the pedestal-subtracted trace. The pedestal is kept fixed.
func (e *FitExtractor) Fit(t *Trace) *FitResult {
	res := &FitResult{Function: e.function, Samples: t.Len()}
	n := t.Len()
	peak, peakpos, _ := t.Max(0, n)
	if peakpos < 0 || !(peak > e.threshold*t.PedestalRMS) {
		return res
	}

	values := make([]float64, n)
	errs := make([]float64, n)
	positive := 0.
	for i := range values {
		values[i] = t.Samples[i] - t.Pedestal
		errs[i] = sigma(values[i], t.PedestalRMS)
		if values[i] > 0 {
			positive += values[i]
		}
	}
	chi2 := func(p []float64) float64 {
		sum := 0.
		for i, v := range values {
			d := (v - e.function.Eval(float64(i)+0.5, p)) / errs[i]
			sum += d * d
		}
		return sum
	}

	fitted, err := e.solver.Minimize(chi2, e.function.startParameters(peak, peakpos, positive))
	res.Fitted = true
	if fitted.Values == nil {
		res.Fitted = false
		return res
	}
	res.Params = fitted.Values
	if err != nil {
		res.Status = FitStatusFailed
	} else {
		res.Status = fitted.Status
	}
	if ndf := n - fitted.Free; ndf > 0 {
		res.Chi2 = fitted.Min / float64(ndf)
	}
	if res.Status > FitStatusFailed {
		res.RiseTime, res.FallTime, res.Norm = e.function.shape(res.Params)
	}
	res.PeakPosition, res.PeakValue = fittedPeak(res, n)
	return res
}

// fittedPeak scans the fitted function for its maximum on [0, n].
func fittedPeak(r *FitResult, n int) (float64, float64) {
	steps := int(float64(n) / peakScanStep)
	ys := make([]float64, steps+1)
	for i := range ys {
		ys[i] = r.eval(float64(i) * peakScanStep)
	}
	best := floats.MaxIdx(ys)
	return float64(best) * peakScanStep, ys[best]
}

// Extract returns the integral of the fitted pulse over [first, last) and
// the fitted half-maximum time. Traces below threshold or with a failed fit
// are integrated as a fixed window.
func (e *FitExtractor) Extract(t *Trace, first int, last int, raw bool) Result {
	fit := e.Fit(t)
	res := FixedWindow(t, first, last, raw)
	res.Fit = fit
	if !fit.Fitted || fit.Status == FitStatusFailed {
		return res
	}
	charge := fit.Integral(res.WindowFirst, res.WindowLast)
	if raw {
		charge += t.Pedestal * float64(res.WindowLast-res.WindowFirst)
	}
	res.Charge, res.Clamped = clampCharge(charge)
	res.ArrivalTime = fit.TZero()
	return res
}
