package paths

import (
	"context"

	"github.com/25smoking/pathrisk/internal/graph"
)

// Simple delegates to the graph's all-simple-paths primitive. With a
// threshold it scores every path and applies the same post-hoc check as
// DFS; without one paths are returned unscored.
type Simple struct{}

func (s *Simple) Name() string { return NameSimple }

func (s *Simple) FiltersByRisk() bool { return true }

func (s *Simple) Find(ctx context.Context, g *graph.AttackGraph, q Query) ([]Result, error) {
	found, err := g.AllSimplePaths(ctx, q.Source, q.Target, q.MaxDepth)
	if err != nil {
		return nil, err
	}
	if q.Threshold == nil {
		return unscored(found), nil
	}

	scorer := q.scorer(g)
	out := make([]Result, 0, len(found))
	for _, p := range found {
		r, err := scorer.PathRisk(p)
		if err != nil {
			return nil, err
		}
		if q.keep(r) {
			out = append(out, Result{Path: p, Risk: r, Scored: true})
		}
	}
	return out, nil
}

// Shortest returns only the minimum-hop paths. Its output is a subset of
// Simple's and it ignores Threshold and MaxDepth.
type Shortest struct{}

func (s *Shortest) Name() string { return NameShortest }

func (s *Shortest) Find(ctx context.Context, g *graph.AttackGraph, q Query) ([]Result, error) {
	found, err := g.AllShortestPaths(ctx, q.Source, q.Target)
	if err != nil {
		return nil, err
	}
	return unscored(found), nil
}
