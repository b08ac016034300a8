package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/stat"

	pixelproc "github.com/cherenkov-tools/pixelproc/pkg"
	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

func generateEvents(source *pixelproc.SyntheticSource) ([]pixelproc.EventType, error) {
	var events []pixelproc.EventType
	for {
		event, err := source.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, fmt.Errorf("error generating event: %w", err)
		}
		events = append(events, event)
	}
}

func sendEventsToWorkers(events []pixelproc.EventType, jobs chan<- pixelproc.EventType) {
	for _, event := range events {
		jobs <- event
	}
	close(jobs)
}

// Measurement compares the extracted charges and times of one method with
// the simulated truth.
type Measurement struct {
	Method   trace.Method
	Events   int
	Skipped  int
	Duration time.Duration
	Counters pixelproc.Counters

	// extracted over true charge
	ratios []float64
	// pixel time minus true pulse start
	residuals []float64
}

func processWorkerResults(results <-chan pixelproc.EventResult, minCharge float64) Measurement {
	var m Measurement
	for result := range results {
		m.Events++
		if result.Error || result.Truth == nil {
			m.Skipped++
			continue
		}
		for i, charge := range result.Truth.Charge {
			if charge < minCharge || result.Cleaned[i].Dead {
				continue
			}
			m.ratios = append(m.ratios, result.Pixels[i].Charge/charge)
			m.residuals = append(m.residuals, result.Cleaned[i].Time-result.Truth.Time[i])
		}
	}
	return m
}

// Resolution returns the mean and the relative spread of the charge ratio,
// and the spread of the time residuals.
func (m Measurement) Resolution() (mean float64, charge float64, time float64) {
	if len(m.ratios) < 2 {
		return 0, 0, 0
	}
	mean, std := stat.MeanStdDev(m.ratios, nil)
	if mean != 0 {
		charge = std / mean
	}
	time = stat.StdDev(m.residuals, nil)
	return mean, charge, time
}

func (m Measurement) Print(w io.Writer) {
	mean, charge, t := m.Resolution()
	rate := 0.
	if m.Duration > 0 {
		rate = float64(m.Events) / m.Duration.Seconds()
	}
	fmt.Fprintf(w, "(%s) pixels %d, charge ratio %.3f, charge resolution %.3f, time resolution %.3f samples\n",
		m.Method, len(m.ratios), mean, charge, t)
	fmt.Fprintf(w, "(%s) events %d, skipped %d, clamped %d, failed fits %d, %.0f events/s\n",
		m.Method, m.Events, m.Skipped, m.Counters.PixelsClamped, m.Counters.FitsFailed, rate)
}
