package risk

import (
	"math"
	"sync"
	"testing"

	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorers_MatchPathRisk(t *testing.T) {
	g := diamond(t)
	cached, err := NewCachedModel(g, 2)
	require.NoError(t, err)
	direct := NewModel(g)

	for _, path := range [][]int{{0, 1, 3}, {0, 2, 3}, {1}, {2, 3}} {
		want, err := PathRisk(g, path)
		require.NoError(t, err)

		got, err := direct.PathRisk(path)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(want), math.Float64bits(got), "direct %v", path)

		// run twice so the second pass is served from the cache
		for i := 0; i < 2; i++ {
			got, err = cached.PathRisk(path)
			require.NoError(t, err)
			assert.Equal(t, math.Float64bits(want), math.Float64bits(got), "cached %v", path)
		}
	}
	assert.LessOrEqual(t, cached.Len(), 2)
}

func TestCachedModel_Errors(t *testing.T) {
	g := diamond(t)
	cached, err := NewCachedModel(g, 0)
	require.NoError(t, err)

	_, err = cached.PathRisk(nil)
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = cached.Atomic(42)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
	assert.Zero(t, cached.Len(), "failed lookups are not cached")
}

func TestCachedModel_Contribution(t *testing.T) {
	g := diamond(t)
	cached, err := NewCachedModel(g, 8)
	require.NoError(t, err)

	c, err := cached.Contribution(1)
	require.NoError(t, err)
	// node risk 5 × degree 2
	assert.Equal(t, 10.0, c)

	a, err := cached.Atomic(1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, a)
}

func TestCachedModel_Concurrent(t *testing.T) {
	g := diamond(t)
	cached, err := NewCachedModel(g, 4)
	require.NoError(t, err)
	want, _ := PathRisk(g, []int{0, 1, 3})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cached.PathRisk([]int{0, 1, 3})
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
