package graph

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortPaths(paths [][]int) [][]int {
	sort.Slice(paths, func(i, j int) bool {
		a, b := paths[i], paths[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return paths
}

func TestAllSimplePaths_Diamond(t *testing.T) {
	g := newTestGraph(t, 4, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}})

	paths, err := g.AllSimplePaths(context.Background(), 0, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 3}, {0, 2, 3}}, sortPaths(paths))
}

func TestAllSimplePaths_Cycle(t *testing.T) {
	g := newTestGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}, {1, 3}})

	paths, err := g.AllSimplePaths(context.Background(), 0, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {0, 1, 3}}, sortPaths(paths))
	for _, p := range paths {
		assert.True(t, g.IsPath(p))
	}
}

func TestAllSimplePaths_MaxDepth(t *testing.T) {
	g := newTestGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}})

	paths, err := g.AllSimplePaths(context.Background(), 0, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 3}}, paths)

	paths, err = g.AllSimplePaths(context.Background(), 0, 3, 3)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestAllSimplePaths_SelfAndMissing(t *testing.T) {
	g := newTestGraph(t, 1, nil)

	paths, err := g.AllSimplePaths(context.Background(), 0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = g.AllSimplePaths(context.Background(), 0, 9, 0)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestAllSimplePaths_ParallelEdgesCountedOnce(t *testing.T) {
	g := newTestGraph(t, 2, [][2]int{{0, 1}, {0, 1}})

	paths, err := g.AllSimplePaths(context.Background(), 0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}}, paths)
}

func TestAllSimplePaths_Cancelled(t *testing.T) {
	g := newTestGraph(t, 3, [][2]int{{0, 1}, {1, 2}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := g.AllSimplePaths(ctx, 0, 2, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, paths)
}

func TestAllShortestPaths(t *testing.T) {
	g := newTestGraph(t, 5, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}, {0, 4}, {4, 1}})

	paths, err := g.AllShortestPaths(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 3}, {0, 2, 3}}, sortPaths(paths))

	paths, err = g.AllShortestPaths(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestIsPath(t *testing.T) {
	g := newTestGraph(t, 3, [][2]int{{0, 1}, {1, 2}})

	assert.True(t, g.IsPath([]int{0, 1, 2}))
	assert.True(t, g.IsPath([]int{1}))
	assert.False(t, g.IsPath(nil))
	assert.False(t, g.IsPath([]int{0, 2}))
	assert.False(t, g.IsPath([]int{0, 1, 0}))
}
