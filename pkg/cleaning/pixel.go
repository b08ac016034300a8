package cleaning

import (
	"sort"
)

// Cluster ids with a special meaning.
const (
	Unassigned = 0
	Rejected   = -99
)

// Pixel is the per-event state of one camera channel. Charge, Time, PedVar,
// Dead, HiLo and Trace are inputs; the remaining fields are set by cleaning.
type Pixel struct {
	Charge float64
	Time   float64
	// PedVar is the pedestal variation in the integration window, used for
	// noise-scaled thresholds.
	PedVar float64
	Dead   bool
	HiLo   bool
	// Trace holds the pedestal-subtracted samples for trace-correlation cleaning.
	Trace []float64

	Image          bool
	Border         bool
	BrightNonImage bool
	ClusterID      int
	// Correlation is the trace correlation of pixels added by CleanTraceCorrelation.
	Correlation float64
}

func (p *Pixel) selected() bool {
	return p.Image || p.Border
}

func (p *Pixel) reject() {
	p.Image = false
	p.Border = false
	p.ClusterID = Rejected
}

// Cluster summarises the pixels sharing one cluster id.
type Cluster struct {
	ID     int
	Pixels int
	Charge float64
	// Time and the centroid X, Y are charge weighted.
	Time float64
	X    float64
	Y    float64
}

func (c Cluster) valid() bool {
	return c.Charge != 0
}

// clusterStats accumulates the clusters of all pixels with a positive id
// accepted by member. The result is ordered by id.
func clusterStats(g *NeighbourGraph, pixels []Pixel, member func(*Pixel) bool) []Cluster {
	byID := map[int]*Cluster{}
	for i := range pixels {
		p := &pixels[i]
		if p.ClusterID <= 0 || !member(p) {
			continue
		}
		c, ok := byID[p.ClusterID]
		if !ok {
			c = &Cluster{ID: p.ClusterID}
			byID[p.ClusterID] = c
		}
		x, y := g.Position(i)
		c.Pixels++
		c.Charge += p.Charge
		c.Time += p.Charge * p.Time
		c.X += p.Charge * x
		c.Y += p.Charge * y
	}

	clusters := make([]Cluster, 0, len(byID))
	for _, c := range byID {
		if c.Charge != 0 {
			c.Time /= c.Charge
			c.X /= c.Charge
			c.Y /= c.Charge
		} else {
			c.Time, c.X, c.Y = 0, 0, 0
		}
		clusters = append(clusters, *c)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ID < clusters[j].ID })
	return clusters
}

// mainCluster returns the id of the valid cluster with the largest charge.
// Equal charges go to the lowest id. Zero means there is no valid cluster.
func mainCluster(clusters []Cluster) int {
	main := Unassigned
	best := 0.
	for _, c := range clusters {
		if !c.valid() {
			continue
		}
		if main == Unassigned || c.Charge > best || (c.Charge == best && c.ID < main) {
			main = c.ID
			best = c.Charge
		}
	}
	return main
}

func findCluster(clusters []Cluster, id int) (Cluster, bool) {
	for _, c := range clusters {
		if c.ID == id {
			return c, true
		}
	}
	return Cluster{}, false
}

// countClusters counts distinct positive ids among image and border pixels.
func countClusters(pixels []Pixel) int {
	ids := map[int]struct{}{}
	for i := range pixels {
		if pixels[i].selected() && pixels[i].ClusterID > 0 {
			ids[pixels[i].ClusterID] = struct{}{}
		}
	}
	return len(ids)
}
