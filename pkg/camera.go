package pixelproc

import (
	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
)

// Camera is the run-lifetime description of one telescope camera. It is
// shared read-only by all events.
type Camera struct {
	Telescope         int
	Run               int
	Graph             *cleaning.NeighbourGraph
	Dead              []bool
	Pedestal          []float64
	PedestalRMS       []float64
	PedVar            []float64
	LowGainMultiplier []float64
}

func (c *Camera) NChannels() int {
	return c.Graph.Len()
}

// NewHexagonalCamera builds a camera of hexagonal rings with uniform channel
// status, used when no camera database is available. pedvar is the pedestal
// variation of the integration window.
func NewHexagonalCamera(telescope int, run int, rings int, spacing float64, pedestal float64, pedrms float64, pedvar float64) *Camera {
	g := cleaning.HexagonalGraph(rings, spacing)
	n := g.Len()
	c := &Camera{
		Telescope:         telescope,
		Run:               run,
		Graph:             g,
		Dead:              make([]bool, n),
		Pedestal:          make([]float64, n),
		PedestalRMS:       make([]float64, n),
		PedVar:            make([]float64, n),
		LowGainMultiplier: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		c.Pedestal[i] = pedestal
		c.PedestalRMS[i] = pedrms
		c.PedVar[i] = pedvar
		c.LowGainMultiplier[i] = 6.
	}
	return c
}
