package trace

import (
	"golang.org/x/exp/constraints"
)

const (
	// DefaultDynamicRange is the 8-bit FADC value where the readout switches to low gain.
	DefaultDynamicRange = 216
	// DefaultMaxThreshold is used to locate the pulse in low-gain traces.
	DefaultMaxThreshold = 150
)

// Trace is the digitised waveform of one pixel for one event.
type Trace struct {
	Channel     int
	Samples     []float64
	Pedestal    float64
	PedestalRMS float64
	// HiLo is true if the low-gain multiplier has been applied to Samples
	HiLo              bool
	LowGainMultiplier float64
	DynamicRange      int
	MaxThreshold      int
	// SaturationLimit is the raw sample value above which a high-gain sample
	// is considered clipped. Zero disables saturation handling.
	SaturationLimit float64
}

// NewTrace copies the raw ADC samples of one channel. A positive low-gain
// multiplier scales the pedestal-subtracted samples and flags the trace as low gain.
func NewTrace[S constraints.Integer](channel int, samples []S, ped float64, pedrms float64, lowGainMultiplier float64) *Trace {
	t := &Trace{
		Channel:      channel,
		Samples:      make([]float64, len(samples)),
		Pedestal:     ped,
		PedestalRMS:  pedrms,
		DynamicRange: DefaultDynamicRange,
		MaxThreshold: DefaultMaxThreshold,
	}
	for i, s := range samples {
		t.Samples[i] = float64(s)
	}
	t.applyLowGain(lowGainMultiplier)
	return t
}

func (t *Trace) applyLowGain(multiplier float64) {
	if multiplier <= 0 {
		return
	}
	for i := range t.Samples {
		t.Samples[i] = (t.Samples[i]-t.Pedestal)*multiplier + t.Pedestal
	}
	t.HiLo = true
	t.LowGainMultiplier = multiplier
}

// Len returns the number of samples.
func (t *Trace) Len() int {
	return len(t.Samples)
}

// signal returns the pedestal-subtracted value of sample i. Samples <= 0 are
// treated as not simulated and contribute nothing.
func (t *Trace) signal(i int, ped float64) float64 {
	if t.Samples[i] <= 0 {
		return 0
	}
	return t.Samples[i] - ped
}

// Max returns the pedestal-subtracted maximum in [first, last), its position and
// the number of saturated samples seen during the search.
//
// Low-gain traces are searched backwards from the end of the window: the end of
// the saturated high-gain pulse is occasionally found at the start of the readout.
func (t *Trace) Max(first int, last int) (float64, int, int) {
	tmax := -10000.
	maxpos := -100
	saturated := 0
	if first < 0 || first >= last || last > len(t.Samples) {
		return tmax, maxpos, saturated
	}

	if !t.HiLo {
		for i := first; i < last; i++ {
			if t.Samples[i] > tmax {
				tmax = t.Samples[i]
				maxpos = i
			}
			if t.SaturationLimit > 0 && t.Samples[i] > t.SaturationLimit {
				saturated++
			}
		}
		return tmax - t.Pedestal, maxpos, saturated
	}

	limit := float64(t.DynamicRange) * t.LowGainMultiplier
	threshold := float64(t.MaxThreshold)
	for i := last - 1; i >= first; i-- {
		it := t.Samples[i]
		if it < threshold && tmax < 0 {
			continue
		}
		if it < threshold/2 {
			break
		}
		if it > tmax {
			tmax = it
			maxpos = i
		}
		if limit > 0 && it > limit {
			saturated++
		}
	}
	return tmax - t.Pedestal, maxpos, saturated
}

// Saturated reports whether any raw sample exceeds the saturation limit and
// returns the position of the first one.
func (t *Trace) Saturated() (bool, int) {
	if t.SaturationLimit <= 0 {
		return false, -1
	}
	for i, s := range t.Samples {
		if s > t.SaturationLimit {
			return true, i
		}
	}
	return false, -1
}
