package trace

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMethod = errors.New("unknown extraction method")

// Method selects the charge extraction strategy.
type Method int

const (
	MethodFixedWindow Method = iota + 1
	MethodSlidingWindow
	MethodOversampled
	MethodMultiPulse
	MethodPeakAmplitude
	MethodPulseFit
)

var methodNames = map[Method]string{
	MethodFixedWindow:   "fixed_window",
	MethodSlidingWindow: "sliding_window",
	MethodOversampled:   "oversampled",
	MethodMultiPulse:    "multi_pulse",
	MethodPeakAmplitude: "peak_amplitude",
	MethodPulseFit:      "pulse_fit",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Methods lists all strategies in ascending order.
func Methods() []Method {
	return []Method{MethodFixedWindow, MethodSlidingWindow, MethodOversampled,
		MethodMultiPulse, MethodPeakAmplitude, MethodPulseFit}
}

type Settings struct {
	Method Method
	Raw    bool
	// ForceWindowStart restricts the sliding search to [first, SlidingWindowLast).
	ForceWindowStart  bool
	SlidingWindowLast int
	// IPRMeasure searches the second half of the trace with zero pedestal.
	IPRMeasure     bool
	Oversampling   OversampleSettings
	PulseThreshold float64
	MaxPulses      int
	FitFunction    FitFunction
	FitThreshold   float64
}

func DefaultSettings() Settings {
	return Settings{
		Method:         MethodSlidingWindow,
		Oversampling:   DefaultOversampleSettings(),
		PulseThreshold: 5.,
		MaxPulses:      DefaultMaxPulses,
		FitFunction:    FitGrisu,
		FitThreshold:   DefaultFitThreshold,
	}
}

// Extractor applies the configured strategy to traces. It holds no per-trace
// state and is safe for concurrent use.
type Extractor struct {
	settings Settings
	fitter   *FitExtractor
}

func NewExtractor(s Settings) (*Extractor, error) {
	if _, ok := methodNames[s.Method]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(s.Method))
	}
	e := &Extractor{settings: s}
	var errs []error
	switch s.Method {
	case MethodOversampled:
		if s.Oversampling.Factor < 1 {
			errs = append(errs, fmt.Errorf("oversampling factor must be >= 1, got %d", s.Oversampling.Factor))
		}
		if s.Oversampling.PoleZero < 0 || s.Oversampling.PoleZero >= 1 {
			errs = append(errs, fmt.Errorf("pole-zero constant must be in [0, 1), got %g", float64(s.Oversampling.PoleZero)))
		}
	case MethodMultiPulse:
		if s.MaxPulses < 1 {
			errs = append(errs, fmt.Errorf("maximum number of pulses must be >= 1, got %d", s.MaxPulses))
		}
	case MethodPulseFit:
		fitter, err := NewFitExtractor(s.FitFunction, s.FitThreshold, NewSolver())
		if err != nil {
			errs = append(errs, err)
		}
		e.fitter = fitter
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Extractor) Settings() Settings {
	return e.settings
}

// searchRange returns the window starts searched by the sliding strategies.
func (e *Extractor) searchRange(t *Trace, first int) (int, int, bool) {
	n := t.Len()
	switch {
	case e.settings.IPRMeasure:
		return n / 2, n, true
	case e.settings.ForceWindowStart:
		last := e.settings.SlidingWindowLast
		if last > n {
			last = n
		}
		return first, last, e.settings.Raw
	}
	return 0, n, e.settings.Raw
}

// Extract integrates the trace. first and last give the integration window;
// searching strategies use only its length.
func (e *Extractor) Extract(t *Trace, first int, last int) Result {
	s := e.settings
	switch s.Method {
	case MethodFixedWindow:
		return FixedWindow(t, first, last, s.Raw)
	case MethodSlidingWindow:
		start, end, raw := e.searchRange(t, first)
		return SlidingWindow(t, start, end, last-first, raw)
	case MethodOversampled:
		start, end, _ := e.searchRange(t, first)
		return OversampledWindow(t, start, end, last-first, s.Oversampling)
	case MethodMultiPulse:
		return FindPulses(t, s.PulseThreshold, s.MaxPulses)
	case MethodPeakAmplitude:
		return PeakAmplitude(t, s.Raw)
	case MethodPulseFit:
		return e.fitter.Extract(t, first, last, s.Raw)
	}
	return Result{}
}
