package trace

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownFitFunction = errors.New("unknown fit function")

// FitFunction selects the pulse shape fitted by FitExtractor.
type FitFunction int

const (
	// FitEV is an asymmetric Gaussian: the falling edge widens with distance from the peak.
	FitEV FitFunction = iota + 1
	// FitGrisu is the single photo-electron pulse of the Grisu simulation with
	// an optional AC-coupling undershoot.
	FitGrisu
)

var fitFunctionNames = map[FitFunction]string{
	FitEV:    "ev",
	FitGrisu: "grisu",
}

func (f FitFunction) String() string {
	if name, ok := fitFunctionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FitFunction(%d)", int(f))
}

func ParseFitFunction(name string) (FitFunction, error) {
	for f, n := range fitFunctionNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFitFunction, name)
}

// Parameter indices of the two models.
const (
	evAmplitude = iota
	evMean
	evSigma
	evAlpha
	evPedestal
)

const (
	grisuRise = iota
	grisuFall
	grisuRC
	grisuStart
	grisuNorm
	grisuPedestal
)

// Eval returns the model value at x for the given parameters.
func (f FitFunction) Eval(x float64, p []float64) float64 {
	switch f {
	case FitEV:
		return evPulse(x, p)
	case FitGrisu:
		return grisuPulse(x, p)
	}
	return 0
}

func evPulse(x float64, p []float64) float64 {
	xd := x - p[evMean]
	sig := p[evSigma]
	if x < p[evMean] {
		return p[evAmplitude]*math.Exp(-0.5*xd*xd/(sig*sig)) + p[evPedestal]
	}
	den := sig*sig + p[evAlpha]*xd
	if den <= 0 {
		return p[evPedestal]
	}
	return p[evAmplitude]*math.Exp(-0.5*xd*xd/den) + p[evPedestal]
}

// GrisuPulse is the unit-area Grisu pulse starting at tstart, scaled by norm.
func GrisuPulse(t float64, rise float64, fall float64, rc float64, tstart float64, norm float64) float64 {
	t -= tstart
	if t < 0 || rise <= 0 {
		return 0
	}
	wid := fall + rise
	if t < wid {
		alpha := wid/rise - 1.
		renorm := math.Pow(wid, alpha+2) / ((alpha + 1) * (alpha + 2))
		return norm * t * math.Pow(wid-t, alpha) / renorm
	}
	// AC coupling undershoot, makes the full integral vanish
	if rc > 0 {
		return -norm * math.Exp(-(t-wid)/rc) / rc
	}
	return 0
}

func grisuPulse(x float64, p []float64) float64 {
	return GrisuPulse(x, p[grisuRise], p[grisuFall], p[grisuRC], p[grisuStart], p[grisuNorm]) + p[grisuPedestal]
}

// startParameters seeds the fit from the trace maximum and the positive sum
// of the trace.
func (f FitFunction) startParameters(peak float64, peakpos int, sum float64) []Parameter {
	inf := math.Inf(1)
	x := float64(peakpos) + 0.5
	switch f {
	case FitEV:
		return []Parameter{
			{Name: "Constant", Value: peak, Lower: 0, Upper: inf},
			{Name: "Mean", Value: x, Lower: -inf, Upper: inf},
			{Name: "Sigma", Value: 0.6, Lower: 0.01, Upper: 20.},
			{Name: "Alpha", Value: 1.6, Lower: 0., Upper: 20.},
			{Name: "Pedestal", Value: 0, Fixed: true},
		}
	case FitGrisu:
		return []Parameter{
			{Name: "RT", Value: 2.4, Lower: 0.01, Upper: 20.},
			{Name: "FT", Value: 8.0, Lower: 0., Upper: 2000.},
			{Name: "RC", Value: 0, Fixed: true},
			// one start rise time before the centre of the peak sample
			{Name: "T0", Value: x - 2.4, Lower: -inf, Upper: inf},
			{Name: "Constant", Value: sum, Lower: 0, Upper: inf},
			{Name: "Pedestal", Value: 0, Fixed: true},
		}
	}
	return nil
}

// shape returns rise time, fall time and normalisation from fitted parameters.
func (f FitFunction) shape(p []float64) (float64, float64, float64) {
	switch f {
	case FitEV:
		return p[evSigma], p[evAlpha], p[evAmplitude]
	case FitGrisu:
		return p[grisuRise], p[grisuFall], p[grisuNorm]
	}
	return 0, 0, 0
}
