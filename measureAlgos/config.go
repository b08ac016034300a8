package main

import (
	"fmt"
	"log/slog"
	"strings"

	pixelproc "github.com/cherenkov-tools/pixelproc/pkg"
	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

// loadConfiguration reads the configuration file, or returns the defaults
// when no file is given. The benchmark always uses the hexagonal camera.
func loadConfiguration(filename string) (pixelproc.Configuration, error) {
	config := pixelproc.DefaultConfiguration()
	if filename != "" {
		var err error
		config, err = pixelproc.LoadConfiguration(filename)
		if err != nil {
			return config, err
		}
	}
	config.NoDB = true
	return config, config.Validate()
}

// parseMethods parses a comma separated list of extraction methods. "all"
// selects every method.
func parseMethods(list string) ([]trace.Method, error) {
	if list == "all" {
		return trace.Methods(), nil
	}
	var methods []trace.Method
	for _, name := range strings.Split(list, ",") {
		m, err := trace.ParseMethod(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func printConfiguration(config pixelproc.Configuration, logger *slog.Logger) {
	logger.Info(fmt.Sprintf("Camera rings: %d", config.CameraRings), "module", "config")
	logger.Info(fmt.Sprintf("Samples: %d", config.NSamples), "module", "config")
	logger.Info(fmt.Sprintf("Window: first %d, width %d", config.SumFirst, config.SumWindow), "module", "config")
	logger.Info(fmt.Sprintf("Cleaning method: %s", config.CleaningMethod), "module", "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "module", "config")
	logger.Info(fmt.Sprintf("Pixel workers: %d", config.PixelWorkers), "module", "config")
}
