package pixelproc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

type Configuration struct {
	MaxEvents    int  `json:"max_events"`
	Verbosity    int  `json:"verbosity"`
	NumWorkers   int  `json:"num_workers"`
	PixelWorkers int  `json:"pixel_workers"`
	Discard      bool `json:"discard"`

	Telescope int    `json:"telescope"`
	RunNumber int    `json:"run_number"`
	NoDB      bool   `json:"no_db"`
	DBDriver  string `json:"db_driver"`
	Host      string `json:"host"`
	User      string `json:"user"`
	Passwd    string `json:"pass"`
	DBName    string `json:"dbname"`
	// Camera used when no_db is set
	CameraRings   int     `json:"camera_rings"`
	PixelSpacing  float64 `json:"pixel_spacing"`
	MaxNeighbours int     `json:"max_neighbours"`

	NSamples          int              `json:"n_samples"`
	ExtractionMethod  ExtractionMethod `json:"extraction_method"`
	SumFirst          int              `json:"sum_first"`
	SumWindow         int              `json:"sum_window"`
	Raw               bool             `json:"raw"`
	ForceWindowStart  bool             `json:"force_window_start"`
	SlidingWindowLast int              `json:"sliding_window_last"`
	IPRMeasure        bool             `json:"ipr_measure"`
	Oversampling      int              `json:"oversampling"`
	PoleZero          PoleZero         `json:"pole_zero"`
	PulseThreshold    float64          `json:"pulse_threshold"`
	MaxPulses         int              `json:"max_pulses"`
	FitFunction       FitFunction      `json:"fit_function"`
	FitThreshold      float64          `json:"fit_threshold"`
	TimingLevels      []float64        `json:"timing_levels"`
	DynamicRange      int              `json:"dynamic_range"`
	MaxThreshold      int              `json:"max_threshold"`
	SaturationLimit   float64          `json:"saturation_limit"`

	CleaningMethod         CleaningMethod `json:"cleaning_method"`
	FixedThresholds        bool           `json:"fixed_thresholds"`
	ImageThreshold         float64        `json:"image_threshold"`
	BorderThreshold        float64        `json:"border_threshold"`
	BrightThreshold        float64        `json:"bright_threshold"`
	TimeCutPixel           float64        `json:"time_cut_pixel"`
	TimeCutCluster         float64        `json:"time_cut_cluster"`
	FallbackTimeCutPixel   float64        `json:"fallback_time_cut_pixel"`
	FallbackTimeCutCluster float64        `json:"fallback_time_cut_cluster"`
	MinNumPixel            int            `json:"min_num_pixel"`
	LoopMax                int            `json:"loop_max"`
	PixelSize              float64        `json:"pixel_size"`
	TwoPassTiming          bool           `json:"two_pass_timing"`
	CorrThreshold          float64        `json:"corr_threshold"`
	SNThreshold            float64        `json:"sn_threshold"`
	MaxImagePixels         int            `json:"max_image_pixels"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	var config Configuration

	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.NumWorkers = 1
	config.PixelWorkers = 1
	config.Discard = true
	config.Telescope = 1
	config.DBDriver = "mysql"
	config.Host = "localhost"
	config.User = "reader"
	config.Passwd = "readonly"
	config.DBName = "camera"
	config.CameraRings = 10
	config.PixelSpacing = 0.15
	config.MaxNeighbours = 6

	extraction := trace.DefaultSettings()
	config.NSamples = 16
	config.ExtractionMethod = ExtractionMethod{Name: extraction.Method.String(), Code: extraction.Method}
	config.SumFirst = 2
	config.SumWindow = 7
	config.SlidingWindowLast = 16
	config.Oversampling = extraction.Oversampling.Factor
	config.PoleZero = poleZeroFromCode(extraction.Oversampling.PoleZero)
	config.PulseThreshold = extraction.PulseThreshold
	config.MaxPulses = extraction.MaxPulses
	config.FitFunction = FitFunction{Name: extraction.FitFunction.String(), Code: extraction.FitFunction}
	config.FitThreshold = extraction.FitThreshold
	config.TimingLevels = []float64{0.2, 0.5, 0.8, 1.0}
	config.DynamicRange = trace.DefaultDynamicRange
	config.MaxThreshold = trace.DefaultMaxThreshold

	params := cleaning.DefaultParams()
	config.CleaningMethod = CleaningMethod{Name: params.Method.String(), Code: params.Method}
	config.FixedThresholds = params.FixedThresholds
	config.ImageThreshold = params.ImageThreshold
	config.BorderThreshold = params.BorderThreshold
	config.BrightThreshold = params.BrightThreshold
	config.TimeCutPixel = params.TimeCutPixel
	config.TimeCutCluster = params.TimeCutCluster
	config.FallbackTimeCutPixel = params.FallbackTimeCutPixel
	// 0 uses n_samples
	config.FallbackTimeCutCluster = 0
	config.MinNumPixel = params.MinNumPixel
	config.LoopMax = params.LoopMax
	config.PixelSize = params.PixelSize
	config.CorrThreshold = params.CorrelationThreshold
	config.SNThreshold = params.CorrelationSNThreshold
	config.MaxImagePixels = params.MaxImagePixels
	return config
}

// LoadConfiguration reads a JSON configuration file over the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks the values that cannot be caught by the JSON decoder. The
// algorithm packages validate their own settings when the analyzer is built.
func (c Configuration) Validate() error {
	var errs []error
	invalid := func(field string, format string, args ...any) {
		errs = append(errs, &ErrInvalidConfiguration{Field: field, Err: fmt.Errorf(format, args...)})
	}
	if c.NumWorkers < 1 {
		invalid("num_workers", "must be at least 1, got %d", c.NumWorkers)
	}
	if c.PixelWorkers < 1 {
		invalid("pixel_workers", "must be at least 1, got %d", c.PixelWorkers)
	}
	if c.NSamples < 1 {
		invalid("n_samples", "must be at least 1, got %d", c.NSamples)
	}
	if c.SumWindow < 1 {
		invalid("sum_window", "must be at least 1, got %d", c.SumWindow)
	}
	if c.SumFirst < 0 || c.SumFirst >= c.NSamples {
		invalid("sum_first", "must be in [0, %d), got %d", c.NSamples, c.SumFirst)
	}
	if !c.NoDB && c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		invalid("db_driver", "unknown driver %q", c.DBDriver)
	}
	if c.NoDB && c.CameraRings < 0 {
		invalid("camera_rings", "must not be negative, got %d", c.CameraRings)
	}
	if c.ExtractionMethod.Code == 0 {
		invalid("extraction_method", "not set")
	}
	if c.CleaningMethod.Code == 0 {
		invalid("cleaning_method", "not set")
	}
	if _, err := trace.NewPulseTiming(trace.SymmetricLevels(c.TimingLevels...)); err != nil {
		invalid("timing_levels", "%w", err)
	}
	return errors.Join(errs...)
}

// ExtractionSettings converts the configuration into extractor settings.
func (c Configuration) ExtractionSettings() trace.Settings {
	return trace.Settings{
		Method:            c.ExtractionMethod.Code,
		Raw:               c.Raw,
		ForceWindowStart:  c.ForceWindowStart,
		SlidingWindowLast: c.SlidingWindowLast,
		IPRMeasure:        c.IPRMeasure,
		Oversampling: trace.OversampleSettings{
			Factor:   c.Oversampling,
			PoleZero: c.PoleZero.Code,
		},
		PulseThreshold: c.PulseThreshold,
		MaxPulses:      c.MaxPulses,
		FitFunction:    c.FitFunction.Code,
		FitThreshold:   c.FitThreshold,
	}
}

// CleaningParams converts the configuration into cleaning parameters. A zero
// fallback_time_cut_cluster becomes the trace length and a negative one keeps
// time_cut_cluster.
func (c Configuration) CleaningParams() cleaning.Params {
	fallbackCluster := c.FallbackTimeCutCluster
	switch {
	case fallbackCluster == 0:
		fallbackCluster = float64(c.NSamples)
	case fallbackCluster < 0:
		fallbackCluster = 0
	}
	return cleaning.Params{
		Method:                 c.CleaningMethod.Code,
		FixedThresholds:        c.FixedThresholds,
		ImageThreshold:         c.ImageThreshold,
		BorderThreshold:        c.BorderThreshold,
		BrightThreshold:        c.BrightThreshold,
		TimeCutPixel:           c.TimeCutPixel,
		TimeCutCluster:         c.TimeCutCluster,
		FallbackTimeCutPixel:   c.FallbackTimeCutPixel,
		FallbackTimeCutCluster: fallbackCluster,
		MinNumPixel:            c.MinNumPixel,
		LoopMax:                c.LoopMax,
		PixelSize:              c.PixelSize,
		CorrelationThreshold:   c.CorrThreshold,
		CorrelationSNThreshold: c.SNThreshold,
		MaxImagePixels:         c.MaxImagePixels,
	}
}
