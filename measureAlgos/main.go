package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	pixelproc "github.com/cherenkov-tools/pixelproc/pkg"
)

var logger *slog.Logger

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	methodList := flag.String("methods", "all", "Comma separated extraction methods")
	nEvents := flag.Int("events", 200, "Number of synthetic events")
	seed := flag.Uint64("seed", 1, "Seed of the synthetic event source")
	minCharge := flag.Float64("min-charge", 50., "Minimum true charge of the measured pixels")
	flag.Parse()

	configuration, err := loadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	methods, err := parseMethods(*methodList)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if configuration.Verbosity > 0 {
		printConfiguration(configuration, logger)
	}

	pedvar := math.Sqrt(float64(configuration.SumWindow))
	camera := pixelproc.NewHexagonalCamera(configuration.Telescope, configuration.RunNumber,
		configuration.CameraRings, configuration.PixelSpacing, 20., 1., pedvar)
	settings := pixelproc.DefaultSyntheticSettings()
	settings.Events = *nEvents
	settings.NSamples = configuration.NSamples
	settings.Seed = *seed
	events, err := generateEvents(pixelproc.NewSyntheticSource(camera, settings))
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	fmt.Println("Events generated: ", len(events))

	start := time.Now()
	for _, method := range methods {
		config := configuration
		config.ExtractionMethod = pixelproc.ExtractionMethod{Name: method.String(), Code: method}
		m, err := measure(config, camera, events, *minCharge)
		if err != nil {
			logger.Error(fmt.Sprintf("Error measuring %s: %v", method, err))
			continue
		}
		m.Print(os.Stdout)
	}
	duration := time.Since(start)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

// measure runs one extraction method over the events and compares the
// pixels above minCharge with the simulated truth.
func measure(config pixelproc.Configuration, camera *pixelproc.Camera, events []pixelproc.EventType, minCharge float64) (Measurement, error) {
	analyzer, err := pixelproc.NewAnalyzer(config, camera)
	if err != nil {
		return Measurement{}, err
	}
	jobs := make(chan pixelproc.EventType, 100)
	results := make(chan pixelproc.EventResult, 100)
	go sendEventsToWorkers(events, jobs)
	start := time.Now()
	go pixelproc.ProcessEvents(analyzer, config.NumWorkers, jobs, results)

	m := processWorkerResults(results, minCharge)
	m.Method = config.ExtractionMethod.Code
	m.Duration = time.Since(start)
	m.Counters = analyzer.Counters()
	return m, nil
}
