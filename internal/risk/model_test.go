package risk

import (
	"context"
	"math"
	"testing"

	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds 0->1, 0->2, 1->3, 2->3 with every atomic probability 0.5.
func diamond(t *testing.T) *graph.AttackGraph {
	t.Helper()
	g := graph.NewAttackGraph()
	for i := 0; i < 4; i++ {
		g.AddNode(graph.Vulnerability{
			ID:               i,
			CVEID:            "CVE-2023-000" + string(rune('1'+i)),
			CVSS:             float64(4 + i),
			Exploitability:   1.0,
			CodeAvailability: 0.5,
			DefenseIntensity: 1.0,
			ImpactScore:      2.0,
		})
	}
	for _, e := range [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.12346))
	assert.Equal(t, 0.125, Round4(0.125))
	assert.Equal(t, -0.1235, Round4(-0.12346))
	assert.Equal(t, 3.0, Round4(2.99999))
}

func TestAtomicProbability(t *testing.T) {
	g := graph.NewAttackGraph()
	g.AddNode(graph.Vulnerability{ID: 0, Exploitability: 0.8, CodeAvailability: 0.9, DefenseIntensity: 0.7})

	p, err := AtomicProbability(g, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.504, p, 1e-12)

	p, err = SimpleAtomicProbability(g, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.504, p)

	_, err = AtomicProbability(g, 1)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestAtomicProbability_SingleNodeNoEdges(t *testing.T) {
	g := graph.NewAttackGraph()
	g.AddNode(graph.Vulnerability{ID: 0, Exploitability: 0.5, CodeAvailability: 0.4, DefenseIntensity: 0.5})

	p, err := AtomicProbability(g, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, p, 1e-12)
}

func TestAtomic_NotClamped(t *testing.T) {
	v := graph.Vulnerability{Exploitability: 2, CodeAvailability: 1, DefenseIntensity: 1}
	assert.Equal(t, 2.0, Atomic(v))
}

func TestPathProbability_Diamond(t *testing.T) {
	g := diamond(t)

	p, err := PathProbability(g, []int{0, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.125, p)

	_, err = PathProbability(g, nil)
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = PathProbability(g, []int{0, 9})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestNodeRisk(t *testing.T) {
	g := diamond(t)

	r, err := NodeRisk(g, 2)
	require.NoError(t, err)
	// cvss 6 × impact 2 × atomic 0.5
	assert.Equal(t, 6.0, r)
}

func TestPathRisk_Diamond(t *testing.T) {
	g := diamond(t)

	// node risks: 0 -> 4, 1 -> 5, 3 -> 7; degrees: 0 -> 2, 1 -> 2, 3 -> 2
	// (4*2 + 5*2 + 7*2) * 0.125 = 4.0
	r, err := PathRisk(g, []int{0, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, 4.0, r)
}

func TestRiskDeterminism(t *testing.T) {
	g := diamond(t)
	path := []int{0, 2, 3}

	a1, _ := AtomicProbability(g, 2)
	a2, _ := AtomicProbability(g, 2)
	assert.Equal(t, math.Float64bits(a1), math.Float64bits(a2))

	p1, _ := PathProbability(g, path)
	p2, _ := PathProbability(g, path)
	assert.Equal(t, math.Float64bits(p1), math.Float64bits(p2))

	n1, _ := NodeRisk(g, 2)
	n2, _ := NodeRisk(g, 2)
	assert.Equal(t, math.Float64bits(n1), math.Float64bits(n2))

	r1, _ := PathRisk(g, path)
	r2, _ := PathRisk(g, path)
	assert.Equal(t, math.Float64bits(r1), math.Float64bits(r2))
}

func TestGraphRisk(t *testing.T) {
	g := diamond(t)

	total, err := GraphRisk(context.Background(), g, 0, 3)
	require.NoError(t, err)

	r1, _ := PathRisk(g, []int{0, 1, 3})
	r2, _ := PathRisk(g, []int{0, 2, 3})
	assert.InDelta(t, r1+r2, total, 1e-12)

	total, err = GraphRisk(context.Background(), g, 3, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = GraphRisk(context.Background(), g, 0, 99)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestTotalAtomicRisk(t *testing.T) {
	g := diamond(t)
	assert.Equal(t, 2.0, TotalAtomicRisk(g))
}

func TestSummarize(t *testing.T) {
	g := diamond(t)

	rows, err := Summarize(g)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 0, rows[0].ID)
	assert.Equal(t, "MEDIUM", rows[0].Severity)
	assert.Equal(t, 2, rows[3].Degree)
	assert.Equal(t, 0.5, rows[3].Atomic)
	assert.Equal(t, 7.0, rows[3].NodeRisk)
}
