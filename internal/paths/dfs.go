package paths

import (
	"context"

	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/25smoking/pathrisk/internal/risk"
)

// DFS is depth-first backtracking with risk filtering at the target.
//
// The walk uses an explicit stack instead of recursion. A node is marked
// visited when its frame is pushed and unmarked when the frame is popped,
// so the same node can appear in sibling branches. Path-level risk is only
// computed when a path reaches the target, and paths below
// Query.Threshold are dropped; without a threshold every path is kept.
// Filtering at completion does not save traversal work.
//
// Prune adds an intermediate cut: a partial path is abandoned when
// Round4(p·a(target)) × Σ contributions of all nodes is below the
// threshold, where p is the product of atomic probabilities so far. The
// bound only holds while every atomic probability lies in [0, 1] and every
// contribution is non-negative, which is why it is off by default.
type DFS struct {
	Prune bool
}

func (d *DFS) Name() string { return NameDFS }

func (d *DFS) FiltersByRisk() bool { return true }

type dfsFrame struct {
	node int
	next int
	// product of atomic probabilities from source through node
	prob float64
}

func (d *DFS) Find(ctx context.Context, g *graph.AttackGraph, q Query) ([]Result, error) {
	if err := checkEndpoints(g, q); err != nil {
		return nil, err
	}
	if q.Source == q.Target {
		return nil, nil
	}

	scorer := q.scorer(g)
	prune := d.Prune && q.Threshold != nil
	var targetAtomic, ceiling float64
	if prune {
		var err error
		if targetAtomic, err = scorer.Atomic(q.Target); err != nil {
			return nil, err
		}
		if ceiling, err = totalContribution(g, scorer); err != nil {
			return nil, err
		}
	}

	sourceAtomic, err := scorer.Atomic(q.Source)
	if err != nil {
		return nil, err
	}

	var out []Result
	stack := []dfsFrame{{node: q.Source, prob: sourceAtomic}}
	path := Path{q.Source}
	visited := map[int]bool{q.Source: true}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := &stack[len(stack)-1]
		succ, err := g.Successors(top.node)
		if err != nil {
			return nil, err
		}
		if top.next >= len(succ) || (q.MaxDepth > 0 && len(path) > q.MaxDepth) {
			delete(visited, top.node)
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			continue
		}

		nb := succ[top.next]
		top.next++
		if visited[nb] {
			continue
		}

		if nb == q.Target {
			done := make(Path, len(path)+1)
			copy(done, path)
			done[len(path)] = nb
			r, err := scorer.PathRisk(done)
			if err != nil {
				return nil, err
			}
			if q.keep(r) {
				out = append(out, Result{Path: done, Risk: r, Scored: true})
			}
			continue
		}

		a, err := scorer.Atomic(nb)
		if err != nil {
			return nil, err
		}
		prob := top.prob * a
		if prune && risk.Round4(prob*targetAtomic)*ceiling < *q.Threshold {
			continue
		}

		visited[nb] = true
		stack = append(stack, dfsFrame{node: nb, prob: prob})
		path = append(path, nb)
	}
	return out, nil
}

func totalContribution(g *graph.AttackGraph, scorer risk.Scorer) (float64, error) {
	total := 0.0
	for _, id := range g.NodeIDs() {
		c, err := scorer.Contribution(id)
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}
