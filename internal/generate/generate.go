// Package generate builds synthetic attack graphs from an explicit,
// caller-owned random source, so a seed always reproduces the same graph.
package generate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/25smoking/pathrisk/internal/graph"
)

type Options struct {
	Nodes int
	// EdgeFactor × Nodes edge samples are drawn; self-loop samples are
	// skipped, duplicates kept. Zero means 3.
	EdgeFactor int
}

// NewSource returns a PCG-backed generator for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Random draws node attributes from the documented ranges:
// CVSS U(0.1, 10), exploitability and defense intensity U(0.1, 1), impact
// U(0, 10), and code availability 1 - (1/U(1, 100))^0.26.
func Random(rng *rand.Rand, opts Options) (*graph.AttackGraph, error) {
	if opts.Nodes < 1 {
		return nil, fmt.Errorf("node count must be at least 1, got %d", opts.Nodes)
	}
	factor := opts.EdgeFactor
	if factor <= 0 {
		factor = 3
	}

	g := randomNodes(rng, opts.Nodes)
	for i := 0; i < opts.Nodes*factor; i++ {
		from, to := rng.IntN(opts.Nodes), rng.IntN(opts.Nodes)
		if from == to {
			continue
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// CodeAvailability is the public-exploit availability decay for an age
// input x ≥ 1; the result is in [0, 1).
func CodeAvailability(x float64) float64 {
	return 1 - math.Pow(1/x, 0.26)
}

// Layered builds a DAG of width-wide layers where every node links to each
// node of the next layer. Source is node 0 and sink is the last node; the
// number of source-to-sink paths is width^(layers).
func Layered(rng *rand.Rand, layers, width int) (*graph.AttackGraph, error) {
	if layers < 1 || width < 1 {
		return nil, fmt.Errorf("layers and width must be positive, got %d and %d", layers, width)
	}
	total := layers*width + 2
	out := randomNodes(rng, total)

	sink := total - 1
	layer := func(l int) []int {
		ids := make([]int, width)
		for i := range ids {
			ids[i] = 1 + l*width + i
		}
		return ids
	}
	for _, id := range layer(0) {
		if err := out.AddEdge(0, id); err != nil {
			return nil, err
		}
	}
	for l := 0; l+1 < layers; l++ {
		for _, from := range layer(l) {
			for _, to := range layer(l + 1) {
				if err := out.AddEdge(from, to); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, id := range layer(layers - 1) {
		if err := out.AddEdge(id, sink); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func randomNodes(rng *rand.Rand, n int) *graph.AttackGraph {
	g := graph.NewAttackGraph()
	for i := 0; i < n; i++ {
		cve := fmt.Sprintf("CVE-%d-%d", 2000+rng.IntN(24), 1000+rng.IntN(9000))
		g.AddNode(graph.Vulnerability{
			ID:               i,
			CVEID:            cve,
			Definition:       "Description of " + cve,
			CVSS:             uniform(rng, 0.1, 10.0),
			Exploitability:   uniform(rng, 0.1, 1.0),
			CodeAvailability: CodeAvailability(uniform(rng, 1, 100)),
			DefenseIntensity: uniform(rng, 0.1, 1.0),
			ImpactScore:      uniform(rng, 0, 10),
		})
	}
	return g
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
