package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	sqlx "github.com/jmoiron/sqlx"

	pixelproc "github.com/cherenkov-tools/pixelproc/pkg"
)

// Channel status of the camera built when no database is used
const (
	defaultPedestal    = 20.
	defaultPedestalRMS = 1.
)

var dbConn *sqlx.DB
var configuration pixelproc.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	logger = NewLogger(os.Stdout, os.Stderr)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	nEvents := flag.Int("events", 100, "Number of synthetic events")
	seed := flag.Uint64("seed", 1, "Seed of the synthetic event source")
	initDB := flag.Bool("init-db", false, "Store a hexagonal camera in the database and exit")
	flag.Parse()

	var err error
	configuration, err = pixelproc.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if err := configuration.Validate(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	session := uuid.New()
	logger = logger.With("session", session.String())
	pixelproc.SetConfiguration(configuration)
	pixelproc.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if *initDB {
		if err := storeHexagonalCamera(); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	camera, err := loadCamera()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Camera of telescope %d: %d channels", camera.Telescope, camera.NChannels())
		logger.Info(message, "main")
	}

	analyzer, err := pixelproc.NewAnalyzer(configuration, camera)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	settings := pixelproc.DefaultSyntheticSettings()
	settings.Events = min(*nEvents, configuration.MaxEvents)
	settings.NSamples = configuration.NSamples
	settings.Seed = *seed
	settings.NoiseRMS = defaultPedestalRMS
	source := pixelproc.NewSyntheticSource(camera, settings)

	start := time.Now()
	jobs := make(chan pixelproc.EventType, 100)
	results := make(chan pixelproc.EventResult, 100)
	go sendEventsToWorkers(source, jobs)
	go pixelproc.ProcessEvents(analyzer, configuration.NumWorkers, jobs, results)

	summary := processWorkerResults(results)
	summary.Session = session.String()
	summary.Counters = analyzer.Counters()
	summary.Duration = time.Since(start)
	summary.Print(logger)
}

func openDatabase() error {
	var err error
	dbConn, err = pixelproc.ConnectToDatabase(configuration.DBDriver, configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return fmt.Errorf("Error connection to database: %w", err)
	}
	return nil
}

func hexagonalCamera() *pixelproc.Camera {
	pedvar := defaultPedestalRMS * math.Sqrt(float64(configuration.SumWindow))
	return pixelproc.NewHexagonalCamera(configuration.Telescope, configuration.RunNumber,
		configuration.CameraRings, configuration.PixelSpacing, defaultPedestal, defaultPedestalRMS, pedvar)
}

func loadCamera() (*pixelproc.Camera, error) {
	if configuration.NoDB {
		return hexagonalCamera(), nil
	}
	if err := openDatabase(); err != nil {
		return nil, err
	}
	defer dbConn.Close()
	return pixelproc.LoadCamera(dbConn, configuration.Telescope, configuration.RunNumber)
}

// storeHexagonalCamera fills an empty database with the camera used when
// no_db is set, valid for all runs.
func storeHexagonalCamera() error {
	if err := openDatabase(); err != nil {
		return err
	}
	defer dbConn.Close()
	if _, err := dbConn.Exec(pixelproc.CameraSchema); err != nil {
		return fmt.Errorf("error creating camera tables: %w", err)
	}
	camera := hexagonalCamera()
	if err := pixelproc.StoreCamera(dbConn, camera, 0, math.MaxInt32); err != nil {
		return err
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Stored camera of telescope %d: %d channels", camera.Telescope, camera.NChannels())
		logger.Info(message, "main")
	}
	return nil
}
