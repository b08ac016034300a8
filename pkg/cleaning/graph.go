package cleaning

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrTooManyNeighbours   = errors.New("too many neighbours")
	ErrNeighbourOutOfRange = errors.New("neighbour index out of range")
	ErrLengthMismatch      = errors.New("length mismatch")
)

// NeighbourGraph is the fixed adjacency of camera pixels together with their
// positions. It is never modified after construction and may be shared.
type NeighbourGraph struct {
	neighbours [][]int
	x          []float64
	y          []float64
}

// NewNeighbourGraph validates and copies the neighbour lists. A positive
// maxNeighbours limits the number of neighbours per channel.
func NewNeighbourGraph(neighbours [][]int, x []float64, y []float64, maxNeighbours int) (*NeighbourGraph, error) {
	n := len(neighbours)
	if len(x) != n || len(y) != n {
		return nil, fmt.Errorf("%w: %d neighbour lists, %d x and %d y positions", ErrLengthMismatch, n, len(x), len(y))
	}
	g := &NeighbourGraph{
		neighbours: make([][]int, n),
		x:          append([]float64(nil), x...),
		y:          append([]float64(nil), y...),
	}
	var errs []error
	for i, list := range neighbours {
		if maxNeighbours > 0 && len(list) > maxNeighbours {
			errs = append(errs, fmt.Errorf("%w: channel %d has %d, maximum is %d", ErrTooManyNeighbours, i, len(list), maxNeighbours))
		}
		for _, k := range list {
			if k < 0 || k >= n || k == i {
				errs = append(errs, fmt.Errorf("%w: channel %d lists %d", ErrNeighbourOutOfRange, i, k))
			}
		}
		g.neighbours[i] = append([]int(nil), list...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *NeighbourGraph) Len() int {
	return len(g.neighbours)
}

func (g *NeighbourGraph) Neighbours(i int) []int {
	return g.neighbours[i]
}

func (g *NeighbourGraph) Position(i int) (float64, float64) {
	return g.x[i], g.y[i]
}

// axial hexagon directions
var hexDirections = [6][2]int{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}

// HexagonalGraph builds a hexagonal camera with the given number of rings
// around a central pixel. Channel 0 is the centre; rings follow outwards.
func HexagonalGraph(rings int, spacing float64) *NeighbourGraph {
	coords := [][2]int{{0, 0}}
	for k := 1; k <= rings; k++ {
		q, r := -k, k
		for side := 0; side < 6; side++ {
			for step := 0; step < k; step++ {
				coords = append(coords, [2]int{q, r})
				q += hexDirections[side][0]
				r += hexDirections[side][1]
			}
		}
	}

	index := make(map[[2]int]int, len(coords))
	for i, c := range coords {
		index[c] = i
	}
	g := &NeighbourGraph{
		neighbours: make([][]int, len(coords)),
		x:          make([]float64, len(coords)),
		y:          make([]float64, len(coords)),
	}
	for i, c := range coords {
		g.x[i] = spacing * (float64(c[0]) + float64(c[1])/2.)
		g.y[i] = spacing * math.Sqrt(3.) / 2. * float64(c[1])
		for _, d := range hexDirections {
			if k, ok := index[[2]int{c[0] + d[0], c[1] + d[1]}]; ok {
				g.neighbours[i] = append(g.neighbours[i], k)
			}
		}
	}
	return g
}
