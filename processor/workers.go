package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/stat"

	pixelproc "github.com/cherenkov-tools/pixelproc/pkg"
)

func sendEventsToWorkers(source *pixelproc.SyntheticSource, jobs chan<- pixelproc.EventType) {
	defer close(jobs)
	for {
		event, err := source.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				message := fmt.Errorf("error generating event: %w", err)
				logger.Error(message.Error())
			}
			return
		}
		if VerbosityLevel > 1 {
			logger.Info(fmt.Sprintf("Reading event %d", event.EventID), "workers")
		}
		jobs <- event
	}
}

// RunSummary aggregates the cleaned images of a run.
type RunSummary struct {
	Session  string
	Events   int
	Skipped  int
	Counters pixelproc.Counters
	Duration time.Duration

	imagePixels  []float64
	borderPixels []float64
	clusters     []float64
	// pixels of the true image found by the cleaning, and all true image pixels
	truthFound int
	truthTotal int
	// selected pixels outside the true image
	fakes    int
	selected int
}

func processWorkerResults(results <-chan pixelproc.EventResult) RunSummary {
	var summary RunSummary
	for result := range results {
		summary.Events++
		if result.Error {
			summary.Skipped++
			continue
		}
		image, border := result.NImage()
		summary.imagePixels = append(summary.imagePixels, float64(image))
		summary.borderPixels = append(summary.borderPixels, float64(border))
		summary.clusters = append(summary.clusters, float64(result.Summary.NClustersCleaned))
		if VerbosityLevel > 0 {
			message := fmt.Sprintf("Processed event %d: %d image, %d border pixels", result.EventID, image, border)
			logger.Info(message, "workers")
		}

		if result.Truth == nil {
			continue
		}
		for i, px := range result.Cleaned {
			sel := px.Image || px.Border
			if sel {
				summary.selected++
			}
			if result.Truth.Image[i] {
				summary.truthTotal++
				if sel {
					summary.truthFound++
				}
			} else if sel {
				summary.fakes++
			}
		}
	}
	return summary
}

func (s RunSummary) Print(logger Logger) {
	logger.Info(fmt.Sprintf("Session %s", s.Session), "summary")
	logger.Info(fmt.Sprintf("Events processed: %d, skipped: %d", s.Events, s.Skipped), "summary")
	if len(s.imagePixels) > 0 {
		mean, std := stat.MeanStdDev(s.imagePixels, nil)
		logger.Info(fmt.Sprintf("Image pixels per event: %.2f +- %.2f", mean, std), "summary")
		mean, std = stat.MeanStdDev(s.borderPixels, nil)
		logger.Info(fmt.Sprintf("Border pixels per event: %.2f +- %.2f", mean, std), "summary")
		logger.Info(fmt.Sprintf("Clusters per event: %.2f", stat.Mean(s.clusters, nil)), "summary")
	}
	if s.truthTotal > 0 {
		logger.Info(fmt.Sprintf("Image efficiency: %.3f", float64(s.truthFound)/float64(s.truthTotal)), "summary")
	}
	if s.selected > 0 {
		logger.Info(fmt.Sprintf("Noise pixels in images: %.3f", float64(s.fakes)/float64(s.selected)), "summary")
	}
	logger.Info(fmt.Sprintf("Clamped charges: %d, failed fits: %d", s.Counters.PixelsClamped, s.Counters.FitsFailed), "summary")
	logger.Info(fmt.Sprintf("Total time: %d ms", s.Duration.Milliseconds()), "summary")
}
