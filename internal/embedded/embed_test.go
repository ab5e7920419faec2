package embedded

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReferenceGraph(t *testing.T) {
	g, err := ReferenceGraph()
	require.NoError(t, err)
	assert.Equal(t, 20, g.NodeCount())
	assert.Equal(t, 27, g.EdgeCount())

	v, err := g.Node(ReferenceSink)
	require.NoError(t, err)
	assert.Equal(t, "CVE-2023-0020", v.CVEID)
	assert.Equal(t, 8.2, v.CVSS)

	found, err := g.AllSimplePaths(context.Background(), ReferenceSource, ReferenceSink, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][]int{
		{0, 1, 4, 11, 15, 19},
		{0, 2, 6, 15, 19},
		{0, 3, 8, 19},
		{0, 3, 9, 19},
	}, found)
}

func TestDefaultConfigParses(t *testing.T) {
	data, err := DefaultConfig()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "dfs", doc["strategy"])
}
