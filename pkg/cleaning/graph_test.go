package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexagonalGraph(t *testing.T) {
	t.Parallel()

	g := HexagonalGraph(1, 1.)
	require.Equal(t, 7, g.Len())
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, g.Neighbours(0))
	for i := 1; i < 7; i++ {
		assert.Len(t, g.Neighbours(i), 3, "channel %d", i)
		assert.Contains(t, g.Neighbours(i), 0)
	}
	x, y := g.Position(0)
	assert.Zero(t, x)
	assert.Zero(t, y)

	g = HexagonalGraph(2, 0.15)
	assert.Equal(t, 19, g.Len())
	for i := 0; i < g.Len(); i++ {
		for _, k := range g.Neighbours(i) {
			assert.Contains(t, g.Neighbours(k), i, "adjacency of %d and %d is not symmetric", i, k)
		}
	}
}

func TestNewNeighbourGraph(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		in := [][]int{{1}, {0, 2}, {1}}
		g, err := NewNeighbourGraph(in, []float64{0, 1, 2}, []float64{0, 0, 0}, 6)
		require.NoError(t, err)
		in[1][0] = 2
		assert.Equal(t, []int{0, 2}, g.Neighbours(1))
	})

	t.Run("too many neighbours", func(t *testing.T) {
		t.Parallel()
		_, err := NewNeighbourGraph([][]int{{1, 2}, {0}, {0}}, make([]float64, 3), make([]float64, 3), 1)
		assert.ErrorIs(t, err, ErrTooManyNeighbours)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		_, err := NewNeighbourGraph([][]int{{1}, {5}}, make([]float64, 2), make([]float64, 2), 0)
		assert.ErrorIs(t, err, ErrNeighbourOutOfRange)
	})

	t.Run("self", func(t *testing.T) {
		t.Parallel()
		_, err := NewNeighbourGraph([][]int{{0}}, make([]float64, 1), make([]float64, 1), 0)
		assert.ErrorIs(t, err, ErrNeighbourOutOfRange)
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := NewNeighbourGraph([][]int{{1}, {0}}, make([]float64, 2), make([]float64, 1), 0)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})
}

func TestUnionFindLowestRoot(t *testing.T) {
	t.Parallel()
	uf := newUnionFind(6)
	uf.union(5, 3)
	uf.union(3, 4)
	uf.union(4, 1)
	assert.Equal(t, 1, uf.find(5))
	assert.Equal(t, 1, uf.find(3))
	assert.Equal(t, 0, uf.find(0))
	assert.Equal(t, 2, uf.find(2))
}
