package cleaning

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownMethod = errors.New("unknown cleaning method")
	ErrInvalidParams = errors.New("invalid cleaning parameters")
)

// Method selects the cleaning algorithm.
type Method int

const (
	// MethodTwoLevel is the image/border tailcut followed by isolated pixel removal.
	MethodTwoLevel Method = iota + 1
	// MethodTimeCluster groups core pixels into clusters coincident in time.
	MethodTimeCluster
	// MethodTraceCorrelation extends the tailcut image with neighbours whose
	// traces correlate with the mean image pulse.
	MethodTraceCorrelation
)

var methodNames = map[Method]string{
	MethodTwoLevel:         "two_level",
	MethodTimeCluster:      "time_cluster",
	MethodTraceCorrelation: "trace_correlation",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

type Params struct {
	Method Method
	// FixedThresholds compares charges against the thresholds directly;
	// otherwise thresholds are multiples of the pixel pedestal variation.
	FixedThresholds bool
	ImageThreshold  float64
	BorderThreshold float64
	BrightThreshold float64

	TimeCutPixel   float64
	TimeCutCluster float64
	// FallbackTimeCutPixel replaces TimeCutPixel while the time gradient of
	// the image is unknown. Zero keeps TimeCutPixel.
	FallbackTimeCutPixel float64
	// FallbackTimeCutCluster replaces TimeCutCluster while the time gradient
	// is unknown. The default is the length of a default trace, so clusters
	// are not rejected on time in that case. Zero keeps TimeCutCluster.
	FallbackTimeCutCluster float64
	MinNumPixel            int
	LoopMax                int
	// PixelSize widens the pixel time cut for steep time gradients.
	PixelSize float64

	CorrelationThreshold   float64
	CorrelationSNThreshold float64
	MaxImagePixels         int
}

// DefaultTraceLength is the number of samples per trace assumed by
// DefaultParams.
const DefaultTraceLength = 16.

func DefaultParams() Params {
	return Params{
		Method:                 MethodTwoLevel,
		ImageThreshold:         5.,
		BorderThreshold:        2.5,
		BrightThreshold:        2.5,
		TimeCutPixel:           0.5,
		TimeCutCluster:         2.,
		FallbackTimeCutPixel:   5.,
		FallbackTimeCutCluster: DefaultTraceLength,
		MinNumPixel:            3,
		LoopMax:                2,
		PixelSize:              0.15,
		CorrelationThreshold:   0.75,
		CorrelationSNThreshold: 2.,
		MaxImagePixels:         50,
	}
}

func (p Params) validate() error {
	var errs []error
	if _, ok := methodNames[p.Method]; !ok {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownMethod, int(p.Method)))
	}
	if p.BorderThreshold > p.ImageThreshold {
		errs = append(errs, fmt.Errorf("%w: border threshold %g above image threshold %g", ErrInvalidParams, p.BorderThreshold, p.ImageThreshold))
	}
	if p.TimeCutPixel < 0 || p.TimeCutCluster < 0 || p.FallbackTimeCutPixel < 0 || p.FallbackTimeCutCluster < 0 {
		errs = append(errs, fmt.Errorf("%w: time cuts must not be negative", ErrInvalidParams))
	}
	if p.LoopMax < 0 {
		errs = append(errs, fmt.Errorf("%w: loop max %d", ErrInvalidParams, p.LoopMax))
	}
	if p.MinNumPixel < 0 {
		errs = append(errs, fmt.Errorf("%w: minimum number of pixels %d", ErrInvalidParams, p.MinNumPixel))
	}
	return errors.Join(errs...)
}

func (p Params) above(px *Pixel, threshold float64) bool {
	if p.FixedThresholds {
		return px.Charge > threshold
	}
	return px.Charge > threshold*px.PedVar
}

// timeCuts returns the pixel and cluster time cuts for the given gradient.
func (p Params) timeCuts(grad TimeGradient) (float64, float64) {
	if !grad.Known() {
		pixel, cluster := p.TimeCutPixel, p.TimeCutCluster
		if p.FallbackTimeCutPixel > 0 {
			pixel = p.FallbackTimeCutPixel
		}
		if p.FallbackTimeCutCluster > 0 {
			cluster = p.FallbackTimeCutCluster
		}
		return pixel, cluster
	}
	pixel := p.TimeCutPixel
	if spread := math.Abs(grad.Gradient) * p.PixelSize; spread > pixel {
		pixel = spread + 0.1
	}
	return pixel, p.TimeCutCluster
}

// TimeGradient is the linear dependence of pulse time on the position along
// the major axis of the image. The zero value means unknown.
type TimeGradient struct {
	Gradient  float64
	Intercept float64
	CosPhi    float64
	SinPhi    float64
}

func (g TimeGradient) Known() bool {
	return g.Gradient != 0 || g.Intercept != 0
}

// Project returns the position of (x, y) along the major axis.
func (g TimeGradient) Project(x float64, y float64) float64 {
	return x*g.CosPhi + y*g.SinPhi
}

// Summary describes the clusters left by one cleaning pass.
type Summary struct {
	Clusters    []Cluster
	MainCluster int
	// NClustersFormed counts the clusters of core pixels before any rejection.
	NClustersFormed    int
	NClustersUncleaned int
	NClustersCleaned   int
	// BorderNeighbour marks image and border pixels and their live neighbours.
	BorderNeighbour []bool
}

// Cleaner applies one cleaning method to the pixels of an event. It keeps no
// per-event state and is safe for concurrent use.
type Cleaner struct {
	graph  *NeighbourGraph
	params Params
}

func NewCleaner(graph *NeighbourGraph, params Params) (*Cleaner, error) {
	if graph == nil {
		return nil, fmt.Errorf("%w: nil neighbour graph", ErrInvalidParams)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Cleaner{graph: graph, params: params}, nil
}

func (c *Cleaner) Params() Params {
	return c.params
}

func (c *Cleaner) Graph() *NeighbourGraph {
	return c.graph
}

// Clean selects image and border pixels in place. grad is the time gradient
// of a previous pass over the same event, or the zero value.
func (c *Cleaner) Clean(pixels []Pixel, grad TimeGradient) (Summary, error) {
	if len(pixels) != c.graph.Len() {
		return Summary{}, fmt.Errorf("%w: %d pixels for a camera of %d channels", ErrLengthMismatch, len(pixels), c.graph.Len())
	}
	switch c.params.Method {
	case MethodTwoLevel:
		return c.twoLevel(pixels), nil
	case MethodTimeCluster:
		return c.timeCluster(pixels, grad), nil
	case MethodTraceCorrelation:
		s := c.twoLevel(pixels)
		if CleanTraceCorrelation(c.graph, pixels, c.params) > 0 {
			RemoveIsolatedPixels(c.graph, pixels)
			s = c.summarise(pixels)
		}
		return s, nil
	}
	return Summary{}, fmt.Errorf("%w: %d", ErrUnknownMethod, int(c.params.Method))
}

// summarise labels the connected image and border pixels and fills the
// summary of a tailcut pass.
func (c *Cleaner) summarise(pixels []Pixel) Summary {
	uf := newUnionFind(len(pixels))
	for i := range pixels {
		if !pixels[i].selected() {
			continue
		}
		for _, k := range c.graph.Neighbours(i) {
			if pixels[k].selected() {
				uf.union(i, k)
			}
		}
	}
	labels := map[int]int{}
	for i := range pixels {
		p := &pixels[i]
		if !p.selected() {
			if p.ClusterID > 0 {
				p.ClusterID = Unassigned
			}
			continue
		}
		root := uf.find(i)
		id, ok := labels[root]
		if !ok {
			id = len(labels) + 1
			labels[root] = id
		}
		p.ClusterID = id
	}
	clusters := clusterStats(c.graph, pixels, (*Pixel).selected)
	return Summary{
		Clusters:           clusters,
		MainCluster:        mainCluster(clusters),
		NClustersFormed:    len(labels),
		NClustersUncleaned: len(labels),
		NClustersCleaned:   len(labels),
		BorderNeighbour:    FillBorderNeighbours(c.graph, pixels),
	}
}

func resetPixels(pixels []Pixel) {
	for i := range pixels {
		p := &pixels[i]
		p.Image = false
		p.Border = false
		p.BrightNonImage = false
		p.ClusterID = Unassigned
		p.Correlation = 0
	}
}

func clearBright(pixels []Pixel) {
	for i := range pixels {
		if pixels[i].selected() {
			pixels[i].BrightNonImage = false
		}
	}
}
