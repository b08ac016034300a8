package trace

// DefaultMaxPulses bounds the number of pulses reported per trace.
const DefaultMaxPulses = 10

// minPulseLength is the shortest window a candidate pulse is integrated over.
const minPulseLength = 3

// Pulse is one candidate found by FindPulses.
type Pulse struct {
	First  int
	Last   int
	Charge float64
	Time   float64
}

// padPulse widens runs shorter than minPulseLength to three samples. A single
// sample grows by one on each side; a pair grows towards its larger neighbour.
func padPulse(values []float64, first int, last int) (int, int) {
	n := len(values)
	switch last - first {
	case 1:
		first--
		last++
	case 2:
		left, right := -1.e30, -1.e30
		if first > 0 {
			left = values[first-1]
		}
		if last < n {
			right = values[last]
		}
		if right > left {
			last++
		} else {
			first--
		}
	}
	return boundWindow(first, last, n)
}

func integratePulse(values []float64, first int, last int) Pulse {
	p := Pulse{First: first, Last: last}
	tsum := 0.
	for i := first; i < last; i++ {
		p.Charge += values[i]
		tsum += (float64(i) + 0.5) * values[i]
	}
	p.Charge, _ = clampCharge(p.Charge)
	if p.Charge != 0 {
		p.Time = tsum / p.Charge
	}
	return p
}

// FindPulses scans the pedestal-subtracted trace for runs of samples above
// threshold and integrates each run as a separate pulse. At most maxPulses are
// kept, in trace order. The result reports the pulse with the largest charge.
//
// If the trace is saturated, the runs are discarded and a single pulse is
// integrated from the first sample above threshold to the end of the trace.
func FindPulses(t *Trace, threshold float64, maxPulses int) Result {
	res := Result{}
	res.setPeak(t)
	n := t.Len()
	if n == 0 {
		return res
	}
	if maxPulses <= 0 {
		maxPulses = DefaultMaxPulses
	}
	values := t.pedestalSubtracted(false)

	var pulses []Pulse
	earliest := -1
	runStart := -1
	for i := 0; i <= n; i++ {
		above := i < n && values[i] > threshold
		if above {
			if earliest < 0 {
				earliest = i
			}
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart < 0 {
			continue
		}
		if len(pulses) < maxPulses {
			first, last := padPulse(values, runStart, i)
			pulses = append(pulses, integratePulse(values, first, last))
		}
		runStart = -1
	}

	if saturated, _ := t.Saturated(); saturated && earliest >= 0 {
		pulses = []Pulse{integratePulse(values, earliest, n)}
	}
	if len(pulses) == 0 {
		return res
	}

	best := 0
	for i := range pulses {
		if pulses[i].Charge > pulses[best].Charge {
			best = i
		}
	}
	res.Pulses = pulses
	res.Charge = pulses[best].Charge
	res.ArrivalTime = pulses[best].Time
	res.WindowFirst = pulses[best].First
	res.WindowLast = pulses[best].Last
	return res
}
