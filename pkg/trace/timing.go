package trace

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidLevels = errors.New("invalid pulse timing levels")

// PulseTiming computes the times at which a pulse crosses a set of fractions
// of its maximum. The levels are symmetric around the peak (1.0): the rising
// half gives interpolated crossing times, the falling half gives the width of
// the pulse at the mirrored level.
type PulseTiming struct {
	levels []float64
	maxIdx int
}

// SymmetricLevels mirrors rising-edge fractions around the peak, e.g.
// (0.2, 0.5, 0.8, 1.0) becomes (0.2, 0.5, 0.8, 1.0, 0.8, 0.5, 0.2).
func SymmetricLevels(rising ...float64) []float64 {
	levels := make([]float64, 0, 2*len(rising))
	levels = append(levels, rising...)
	for i := len(rising) - 2; i >= 0; i-- {
		levels = append(levels, rising[i])
	}
	return levels
}

func NewPulseTiming(levels []float64) (*PulseTiming, error) {
	n := len(levels)
	if n == 0 || n%2 == 0 {
		return nil, fmt.Errorf("%w: need an odd number of levels, got %d", ErrInvalidLevels, n)
	}
	mid := (n - 1) / 2
	if math.Abs(levels[mid]-1.) > 1.e-5 {
		return nil, fmt.Errorf("%w: centre level is %g, expected 1", ErrInvalidLevels, levels[mid])
	}
	for i := 0; i < mid; i++ {
		if levels[i] <= 0 || levels[i] >= 1 {
			return nil, fmt.Errorf("%w: level %g outside (0, 1)", ErrInvalidLevels, levels[i])
		}
		if i > 0 && levels[i] <= levels[i-1] {
			return nil, fmt.Errorf("%w: rising levels not increasing at position %d", ErrInvalidLevels, i)
		}
		if math.Abs(levels[i]-levels[n-1-i]) > 1.e-5 {
			return nil, fmt.Errorf("%w: levels not symmetric at position %d", ErrInvalidLevels, i)
		}
	}
	return &PulseTiming{
		levels: append([]float64(nil), levels...),
		maxIdx: mid,
	}, nil
}

func (p *PulseTiming) Levels() []float64 {
	return append([]float64(nil), p.levels...)
}

// MaxIndex is the position of the peak time in the timing vector.
func (p *PulseTiming) MaxIndex() int {
	return p.maxIdx
}

// TZeroIndex is the position of the rising half-maximum time, or -1.
func (p *PulseTiming) TZeroIndex() int {
	for i := 0; i < p.maxIdx; i++ {
		if math.Abs(p.levels[i]-0.5) < 1.e-5 {
			return i
		}
	}
	return -1
}

// WidthIndex is the position of the width at half maximum, or -1.
func (p *PulseTiming) WidthIndex() int {
	for i := p.maxIdx + 1; i < len(p.levels); i++ {
		if math.Abs(p.levels[i]-0.5) < 1.e-5 {
			return i
		}
	}
	return -1
}

// interpolate returns the position where the line through the sample centres
// (x1, y1) and (x2, y2) reaches y.
func interpolate(y float64, x1 int, y1 float64, x2 int, y2 float64) float64 {
	if x2 == x1 {
		return 0
	}
	a := (y2 - y1) / float64(x2-x1)
	if a == 0 {
		return 0
	}
	b := y2 - a*(float64(x2)+0.5)
	return (y - b) / a
}

// Calculate returns the timing vector for the pulse with the maximum in
// [first, last). Crossings are searched within [tFirst, tLast). The boolean is
// false if no pulse was found or the lowest rising level was never crossed.
// Entries that could not be determined are 0.
func (p *PulseTiming) Calculate(t *Trace, first int, last int, tFirst int, tLast int) ([]float64, bool) {
	n := len(p.levels)
	timing := make([]float64, n)
	if first < 0 {
		first = 0
	}
	if last > t.Len() {
		last = t.Len()
	}
	if tFirst < 0 {
		tFirst = 0
	}
	if tLast > t.Len() {
		tLast = t.Len()
	}

	tmax, maxpos, _ := t.Max(first, last)
	if maxpos < 0 {
		return timing, false
	}
	timing[p.maxIdx] = float64(maxpos) + 0.5
	if tmax <= 0 {
		return timing, false
	}

	found := make([]bool, n)
	complete := false
	for i := maxpos; i >= tFirst && !complete; i-- {
		v := t.Samples[i] - t.Pedestal
		for pos := p.maxIdx - 1; pos >= 0; pos-- {
			if found[pos] || v >= p.levels[pos]*tmax || i+1 >= t.Len() {
				continue
			}
			timing[pos] = interpolate(p.levels[pos]*tmax, i, v, i+1, t.Samples[i+1]-t.Pedestal)
			found[pos] = true
			if pos == 0 {
				complete = true
			}
		}
	}

	for i := maxpos; i < tLast && i > 0; i++ {
		v := t.Samples[i] - t.Pedestal
		done := false
		for pos := p.maxIdx + 1; pos < n; pos++ {
			if found[pos] || v >= p.levels[pos]*tmax {
				continue
			}
			fall := interpolate(p.levels[pos]*tmax, i, v, i-1, t.Samples[i-1]-t.Pedestal)
			timing[pos] = fall - timing[n-1-pos]
			found[pos] = true
			if pos == n-1 {
				done = true
			}
		}
		if done {
			break
		}
	}
	return timing, complete
}
