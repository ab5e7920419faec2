// Package risk computes probabilistic risk over an attack graph.
//
// Rounding policy: the values the analysis has always reported to four
// decimals (PathProbability, SimpleAtomicProbability, TotalAtomicRisk) are
// rounded when they leave the function. Every other value is full
// precision; callers round at presentation time.
package risk

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/25smoking/pathrisk/internal/graph"
)

var ErrEmptyPath = errors.New("empty path")

// Graph is the read-only view the risk functions need.
type Graph interface {
	Node(id int) (graph.Vulnerability, error)
	Degree(id int) (int, error)
}

// Round4 rounds half away from zero to four decimal places.
func Round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// Atomic is exploitability × code availability × defense intensity.
// Inputs are not clamped.
func Atomic(v graph.Vulnerability) float64 {
	return v.Exploitability * v.CodeAvailability * v.DefenseIntensity
}

// NodeLevel is CVSS × impact score × atomic probability.
func NodeLevel(v graph.Vulnerability) float64 {
	return v.CVSS * v.ImpactScore * Atomic(v)
}

func AtomicProbability(g Graph, id int) (float64, error) {
	v, err := g.Node(id)
	if err != nil {
		return 0, err
	}
	return Atomic(v), nil
}

// SimpleAtomicProbability is AtomicProbability rounded to four decimals.
func SimpleAtomicProbability(g Graph, id int) (float64, error) {
	p, err := AtomicProbability(g, id)
	if err != nil {
		return 0, err
	}
	return Round4(p), nil
}

func NodeRisk(g Graph, id int) (float64, error) {
	v, err := g.Node(id)
	if err != nil {
		return 0, err
	}
	return NodeLevel(v), nil
}

// PathProbability multiplies the atomic probabilities along path and rounds
// the product to four decimals.
func PathProbability(g Graph, path []int) (float64, error) {
	if len(path) == 0 {
		return 0, ErrEmptyPath
	}
	p := 1.0
	for _, id := range path {
		a, err := AtomicProbability(g, id)
		if err != nil {
			return 0, err
		}
		p *= a
	}
	return Round4(p), nil
}

// PathRisk is PathProbability(path) × Σ NodeRisk(n) × Degree(n).
// Degree counts parallel edges, so well connected nodes weigh more.
func PathRisk(g Graph, path []int) (float64, error) {
	return pathRisk(path, func(id int) (terms, error) { return computeTerms(g, id) })
}

// GraphRisk sums PathRisk over every simple path from source to sink. It
// enumerates all simple paths and is exponential in the worst case.
func GraphRisk(ctx context.Context, g *graph.AttackGraph, source, sink int) (float64, error) {
	paths, err := g.AllSimplePaths(ctx, source, sink, 0)
	if err != nil {
		return 0, err
	}
	scorer := NewModel(g)
	total := 0.0
	for _, p := range paths {
		r, err := scorer.PathRisk(p)
		if err != nil {
			return 0, err
		}
		total += r
	}
	return total, nil
}

// TotalAtomicRisk sums the rounded atomic probability of every node and
// rounds the sum. It is the cheap whole-graph summary; GraphRisk is the
// path-based one.
func TotalAtomicRisk(g *graph.AttackGraph) float64 {
	total := 0.0
	for _, v := range g.Nodes() {
		total += Round4(Atomic(v))
	}
	return Round4(total)
}

// NodeSummary is the per-node breakdown printed by the risk report.
type NodeSummary struct {
	ID       int     `json:"id"`
	CVEID    string  `json:"cve_id"`
	CVSS     float64 `json:"cvss"`
	Severity string  `json:"severity"`
	Degree   int     `json:"degree"`
	Atomic   float64 `json:"atomic_probability"`
	NodeRisk float64 `json:"node_level_risk"`
}

func Summarize(g *graph.AttackGraph) ([]NodeSummary, error) {
	nodes := g.Nodes()
	out := make([]NodeSummary, 0, len(nodes))
	for _, v := range nodes {
		deg, err := g.Degree(v.ID)
		if err != nil {
			return nil, fmt.Errorf("summarize node %d: %w", v.ID, err)
		}
		out = append(out, NodeSummary{
			ID:       v.ID,
			CVEID:    v.CVEID,
			CVSS:     v.CVSS,
			Severity: graph.Severity(v.CVSS),
			Degree:   deg,
			Atomic:   Atomic(v),
			NodeRisk: NodeLevel(v),
		})
	}
	return out, nil
}
