package pixelproc

import (
	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
)

type EventType struct {
	RunNumber uint32
	Telescope int
	EventID   uint32
	Timestamp uint64
	Channels  []ChannelData
	// Truth is only filled by the synthetic source
	Truth *EventTruth
	Error bool
}

// ChannelData holds the FADC samples of one read-out channel. Zero pedestal
// values are taken from the camera.
type ChannelData struct {
	Channel     int
	Samples     []uint16
	HiLo        bool
	Pedestal    float64
	PedestalRMS float64
	PedVar      float64
}

// EventTruth is the simulated signal of every channel.
type EventTruth struct {
	Charge []float64
	Time   []float64
	Image  []bool
}

// PixelResult is the extraction output of one channel.
type PixelResult struct {
	Channel      int
	Charge       float64
	ArrivalTime  float64
	WindowFirst  int
	WindowLast   int
	PeakValue    float64
	PeakPosition int
	Saturated    int
	Timing       []float64
	TimingValid  bool
	Pulses       int
	Fitted       bool
	FitStatus    int
	Chi2         float64
}

type EventResult struct {
	RunNumber     uint32
	EventID       uint32
	Pixels        []PixelResult
	Cleaned       []cleaning.Pixel
	Summary       cleaning.Summary
	Gradient      cleaning.TimeGradient
	GradientKnown bool
	Truth         *EventTruth
	Error         bool
	Err           error
}

// NImage counts the image and border pixels of the event.
func (r *EventResult) NImage() (int, int) {
	image, border := 0, 0
	for i := range r.Cleaned {
		if r.Cleaned[i].Image {
			image++
		}
		if r.Cleaned[i].Border {
			border++
		}
	}
	return image, border
}
