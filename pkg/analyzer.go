package pixelproc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

// Counters are the diagnostic counts of an analyzer.
type Counters struct {
	EventsProcessed int64
	EventsSkipped   int64
	PixelsClamped   int64
	FitsFailed      int64
}

type counters struct {
	eventsProcessed atomic.Int64
	eventsSkipped   atomic.Int64
	pixelsClamped   atomic.Int64
	fitsFailed      atomic.Int64
}

// Analyzer extracts every channel of an event and cleans the camera image.
// All per-event state lives in the event result, so one analyzer serves all
// workers of a run.
type Analyzer struct {
	config    Configuration
	camera    *Camera
	extractor *trace.Extractor
	timing    *trace.PulseTiming
	cleaner   *cleaning.Cleaner
	counters  counters
}

func NewAnalyzer(config Configuration, camera *Camera) (*Analyzer, error) {
	if camera == nil || camera.Graph == nil {
		return nil, &ErrInvalidConfiguration{Field: "camera", Err: fmt.Errorf("no camera")}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	extractor, err := trace.NewExtractor(config.ExtractionSettings())
	if err != nil {
		return nil, &ErrInvalidConfiguration{Field: "extraction_method", Err: err}
	}
	timing, err := trace.NewPulseTiming(trace.SymmetricLevels(config.TimingLevels...))
	if err != nil {
		return nil, &ErrInvalidConfiguration{Field: "timing_levels", Err: err}
	}
	cleaner, err := cleaning.NewCleaner(camera.Graph, config.CleaningParams())
	if err != nil {
		return nil, &ErrInvalidConfiguration{Field: "cleaning_method", Err: err}
	}
	return &Analyzer{
		config:    config,
		camera:    camera,
		extractor: extractor,
		timing:    timing,
		cleaner:   cleaner,
	}, nil
}

func (a *Analyzer) Camera() *Camera {
	return a.camera
}

func (a *Analyzer) Counters() Counters {
	return Counters{
		EventsProcessed: a.counters.eventsProcessed.Load(),
		EventsSkipped:   a.counters.eventsSkipped.Load(),
		PixelsClamped:   a.counters.pixelsClamped.Load(),
		FitsFailed:      a.counters.fitsFailed.Load(),
	}
}

// ProcessEvent extracts all channels and cleans the image. Structural faults
// skip the cleaning of the event and are reported in the result.
func (a *Analyzer) ProcessEvent(event EventType) EventResult {
	a.counters.eventsProcessed.Add(1)
	result := EventResult{
		RunNumber: event.RunNumber,
		EventID:   event.EventID,
		Truth:     event.Truth,
	}
	n := a.camera.NChannels()

	channels := make([]*ChannelData, n)
	for i := range event.Channels {
		ch := &event.Channels[i]
		if ch.Channel < 0 || ch.Channel >= n {
			return a.skip(result, fmt.Errorf("%w: channel %d in a camera of %d channels", cleaning.ErrNeighbourOutOfRange, ch.Channel, n))
		}
		channels[ch.Channel] = ch
	}

	result.Pixels = make([]PixelResult, n)
	result.Cleaned = make([]cleaning.Pixel, n)
	a.extractAll(channels, result.Pixels, result.Cleaned)

	summary, err := a.cleaner.Clean(result.Cleaned, cleaning.TimeGradient{})
	if err != nil {
		return a.skip(result, err)
	}
	if grad, ok := cleaning.EstimateTimeGradient(a.camera.Graph, result.Cleaned); ok {
		result.Gradient = grad
		result.GradientKnown = true
		if a.config.TwoPassTiming && a.config.CleaningMethod.Code == cleaning.MethodTimeCluster {
			summary, err = a.cleaner.Clean(result.Cleaned, grad)
			if err != nil {
				return a.skip(result, err)
			}
		}
	}
	result.Summary = summary

	if a.config.Verbosity > 1 {
		image, border := result.NImage()
		message := fmt.Sprintf("Event %d: %d image, %d border pixels, %d clusters", event.EventID, image, border, summary.NClustersCleaned)
		logger.Info(message, "analyzer")
	}
	return result
}

func (a *Analyzer) skip(result EventResult, err error) EventResult {
	a.counters.eventsSkipped.Add(1)
	result.Error = true
	result.Err = &ErrEventCleaning{EventID: result.EventID, Err: err}
	logger.Error(result.Err.Error())
	return result
}

// extractAll runs the per-channel extraction on PixelWorkers goroutines.
// Each goroutine owns a disjoint range of channels.
func (a *Analyzer) extractAll(channels []*ChannelData, pixels []PixelResult, cleaned []cleaning.Pixel) {
	workers := a.config.PixelWorkers
	if workers <= 1 {
		for i := range channels {
			pixels[i], cleaned[i] = a.extractChannel(i, channels[i])
		}
		return
	}
	chunk := (len(channels) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(channels); start += chunk {
		end := min(start+chunk, len(channels))
		wg.Add(1)
		go func(start int, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				pixels[i], cleaned[i] = a.extractChannel(i, channels[i])
			}
		}(start, end)
	}
	wg.Wait()
}

func (a *Analyzer) extractChannel(i int, ch *ChannelData) (PixelResult, cleaning.Pixel) {
	cam := a.camera
	res := PixelResult{Channel: i}
	px := cleaning.Pixel{Dead: cam.Dead[i], PedVar: cam.PedVar[i]}
	if ch == nil || len(ch.Samples) == 0 {
		px.Dead = true
		return res, px
	}

	ped, pedrms := cam.Pedestal[i], cam.PedestalRMS[i]
	if ch.Pedestal != 0 {
		ped = ch.Pedestal
	}
	if ch.PedestalRMS != 0 {
		pedrms = ch.PedestalRMS
	}
	if ch.PedVar != 0 {
		px.PedVar = ch.PedVar
	}
	multiplier := 0.
	if ch.HiLo {
		multiplier = cam.LowGainMultiplier[i]
	}
	tr := trace.NewTrace(i, ch.Samples, ped, pedrms, multiplier)
	tr.DynamicRange = a.config.DynamicRange
	tr.MaxThreshold = a.config.MaxThreshold
	tr.SaturationLimit = a.config.SaturationLimit

	first := a.config.SumFirst
	last := min(first+a.config.SumWindow, tr.Len())
	r := a.extractor.Extract(tr, first, last)
	if r.Clamped {
		a.counters.pixelsClamped.Add(1)
		if a.config.Verbosity > 2 {
			logger.Info(fmt.Sprintf("Channel %d: charge clamped to 0", i), "analyzer")
		}
	}
	res.Charge = r.Charge
	res.ArrivalTime = r.ArrivalTime
	res.WindowFirst = r.WindowFirst
	res.WindowLast = r.WindowLast
	res.PeakValue = r.PeakValue
	res.PeakPosition = r.PeakPosition
	res.Saturated = r.SaturatedSamples
	res.Pulses = len(r.Pulses)
	if r.Fit != nil {
		res.Fitted = r.Fit.Fitted
		res.FitStatus = r.Fit.Status
		res.Chi2 = r.Fit.Chi2
		if r.Fit.Fitted && r.Fit.Status == trace.FitStatusFailed {
			a.counters.fitsFailed.Add(1)
		}
	}

	res.Timing, res.TimingValid = a.timing.Calculate(tr, 0, tr.Len(), 0, tr.Len())
	px.Charge = res.Charge
	px.Time = res.ArrivalTime
	if t0 := a.timing.TZeroIndex(); res.TimingValid && t0 >= 0 {
		px.Time = res.Timing[t0]
	}
	px.HiLo = tr.HiLo
	if a.config.CleaningMethod.Code == cleaning.MethodTraceCorrelation {
		px.Trace = make([]float64, tr.Len())
		for j, v := range tr.Samples {
			px.Trace[j] = v - tr.Pedestal
		}
	}
	return res, px
}
