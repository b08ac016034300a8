package pixelproc

import (
	"io"
	"math"
	"math/rand/v2"

	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

type SyntheticSettings struct {
	Events   int
	NSamples int
	Seed     uint64
	// NoiseRMS is the Gaussian night-sky and electronics noise in ADC counts.
	NoiseRMS float64
	// ImageSize is the total charge of the image in ADC counts times samples.
	ImageSize float64
	// Length and Width are the RMS extents of the elliptical image.
	Length float64
	Width  float64
	// TimeGradient delays the pulses along the major axis, in samples per
	// unit of camera coordinates.
	TimeGradient float64
	PulseStart   float64
	RiseTime     float64
	FallTime     float64
	// ImageCharge is the true charge above which a pixel belongs to the image.
	ImageCharge float64
}

func DefaultSyntheticSettings() SyntheticSettings {
	return SyntheticSettings{
		Events:       100,
		NSamples:     16,
		Seed:         1,
		NoiseRMS:     1.,
		ImageSize:    3000.,
		Length:       0.3,
		Width:        0.12,
		TimeGradient: 4.,
		PulseStart:   4.,
		RiseTime:     1.5,
		FallTime:     3.,
		ImageCharge:  20.,
	}
}

// SyntheticSource renders elliptical images with a linear time gradient onto
// a camera. It is not safe for concurrent use.
type SyntheticSource struct {
	camera   *Camera
	settings SyntheticSettings
	rng      *rand.Rand
	radius   float64
	next     uint32
}

func NewSyntheticSource(camera *Camera, settings SyntheticSettings) *SyntheticSource {
	radius := 0.
	for i := 0; i < camera.NChannels(); i++ {
		x, y := camera.Graph.Position(i)
		radius = math.Max(radius, math.Hypot(x, y))
	}
	return &SyntheticSource{
		camera:   camera,
		settings: settings,
		rng:      rand.New(rand.NewPCG(settings.Seed, settings.Seed^0x9e3779b97f4a7c15)),
		radius:   radius,
	}
}

// Next returns the next event, or io.EOF once Events events were produced.
func (s *SyntheticSource) Next() (EventType, error) {
	if int(s.next) >= s.settings.Events {
		return EventType{}, io.EOF
	}
	s.next++
	cam := s.camera
	set := s.settings
	n := cam.NChannels()

	// image centre within the inner half of the camera
	r := 0.5 * s.radius * math.Sqrt(s.rng.Float64())
	phi := 2 * math.Pi * s.rng.Float64()
	cx, cy := r*math.Cos(phi), r*math.Sin(phi)
	psi := math.Pi * s.rng.Float64()
	cosPsi, sinPsi := math.Cos(psi), math.Sin(psi)

	truth := &EventTruth{
		Charge: make([]float64, n),
		Time:   make([]float64, n),
		Image:  make([]bool, n),
	}
	weights := make([]float64, n)
	total := 0.
	for i := 0; i < n; i++ {
		x, y := cam.Graph.Position(i)
		u := (x-cx)*cosPsi + (y-cy)*sinPsi
		v := -(x-cx)*sinPsi + (y-cy)*cosPsi
		weights[i] = math.Exp(-0.5 * (u*u/(set.Length*set.Length) + v*v/(set.Width*set.Width)))
		total += weights[i]
		truth.Time[i] = set.PulseStart + set.TimeGradient*u
	}

	event := EventType{
		RunNumber: uint32(cam.Run),
		Telescope: cam.Telescope,
		EventID:   s.next,
		Timestamp: uint64(s.next),
		Truth:     truth,
	}
	for i := 0; i < n; i++ {
		if total > 0 {
			truth.Charge[i] = set.ImageSize * weights[i] / total
		}
		truth.Image[i] = truth.Charge[i] > set.ImageCharge
		if cam.Dead[i] {
			continue
		}
		samples := make([]uint16, set.NSamples)
		for j := range samples {
			v := cam.Pedestal[i] + s.rng.NormFloat64()*set.NoiseRMS
			v += truth.Charge[i] * trace.GrisuPulse(float64(j)+0.5, set.RiseTime, set.FallTime, 0, truth.Time[i], 1.)
			samples[j] = uint16(math.Round(math.Min(math.Max(v, 0), math.MaxUint16)))
		}
		event.Channels = append(event.Channels, ChannelData{Channel: i, Samples: samples})
	}
	return event, nil
}
