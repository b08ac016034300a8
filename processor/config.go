package main

import (
	"fmt"

	pixelproc "github.com/cherenkov-tools/pixelproc/pkg"
	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

func printConfiguration(config pixelproc.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Telescope: %d", config.Telescope), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	if config.NoDB {
		logger.Info(fmt.Sprintf("Camera rings: %d", config.CameraRings), "config")
		logger.Info(fmt.Sprintf("Pixel spacing: %g", config.PixelSpacing), "config")
	} else {
		logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
		logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
		logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	}
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Pixel workers: %d", config.PixelWorkers), "config")
	logger.Info(fmt.Sprintf("Samples: %d", config.NSamples), "config")
	logger.Info(fmt.Sprintf("Extraction method: %s", config.ExtractionMethod), "config")
	logger.Info(fmt.Sprintf("Window: first %d, width %d", config.SumFirst, config.SumWindow), "config")
	switch config.ExtractionMethod.Code {
	case trace.MethodOversampled:
		logger.Info(fmt.Sprintf("Oversampling: %d, pole zero %s", config.Oversampling, config.PoleZero), "config")
	case trace.MethodMultiPulse:
		logger.Info(fmt.Sprintf("Pulse threshold: %g, max pulses %d", config.PulseThreshold, config.MaxPulses), "config")
	case trace.MethodPulseFit:
		logger.Info(fmt.Sprintf("Fit function: %s, threshold %g", config.FitFunction, config.FitThreshold), "config")
	}
	logger.Info(fmt.Sprintf("Timing levels: %v", config.TimingLevels), "config")
	logger.Info(fmt.Sprintf("Cleaning method: %s", config.CleaningMethod), "config")
	logger.Info(fmt.Sprintf("Fixed thresholds: %t", config.FixedThresholds), "config")
	logger.Info(fmt.Sprintf("Thresholds: image %g, border %g, bright %g", config.ImageThreshold, config.BorderThreshold, config.BrightThreshold), "config")
	switch config.CleaningMethod.Code {
	case cleaning.MethodTimeCluster:
		logger.Info(fmt.Sprintf("Time cuts: pixel %g, cluster %g", config.TimeCutPixel, config.TimeCutCluster), "config")
		logger.Info(fmt.Sprintf("Min pixels: %d, loops %d", config.MinNumPixel, config.LoopMax), "config")
		logger.Info(fmt.Sprintf("Two pass timing: %t", config.TwoPassTiming), "config")
	case cleaning.MethodTraceCorrelation:
		logger.Info(fmt.Sprintf("Correlation: %g, S/N %g, max image pixels %d", config.CorrThreshold, config.SNThreshold, config.MaxImagePixels), "config")
	}
}
