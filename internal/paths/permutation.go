package paths

import (
	"context"
	"fmt"

	"github.com/25smoking/pathrisk/internal/graph"
)

// DefaultPermutationMaxNodes keeps factorial search under a million
// permutations.
const DefaultPermutationMaxNodes = 9

// Permutation is the exhaustive reference search. It builds every ordering
// of every subset of the intermediate nodes, frames it with source and
// target, and keeps the orderings that are real paths. Cost is
// O(n!·n); it exists to cross-check the other strategies on small graphs.
//
// With Hamiltonian set it reproduces the plain form: only permutations of
// all nodes are tried, so only paths that visit every node are found.
type Permutation struct {
	// MaxNodes bounds the node count; larger graphs fail with
	// ErrImpracticalInputSize. Zero means DefaultPermutationMaxNodes.
	MaxNodes    int
	Hamiltonian bool
}

func (p *Permutation) Name() string { return NamePermutation }

func (p *Permutation) Find(ctx context.Context, g *graph.AttackGraph, q Query) ([]Result, error) {
	if err := checkEndpoints(g, q); err != nil {
		return nil, err
	}
	limit := p.MaxNodes
	if limit <= 0 {
		limit = DefaultPermutationMaxNodes
	}
	if n := g.NodeCount(); n > limit {
		return nil, fmt.Errorf("%w: permutation search over %d nodes (limit %d)", ErrImpracticalInputSize, n, limit)
	}
	if q.Source == q.Target {
		return nil, nil
	}

	var (
		out     []Result
		visited int
		ctxErr  error
	)
	// emit validates one candidate; it returns false to stop the search.
	emit := func(candidate []int) bool {
		visited++
		if visited&1023 == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		if isWalk(g, candidate) {
			path := make(Path, len(candidate))
			copy(path, candidate)
			out = append(out, Result{Path: path})
		}
		return true
	}

	if p.Hamiltonian {
		ids := g.NodeIDs()
		last := len(ids) - 1
		permute(ids, func(perm []int) bool {
			if perm[0] != q.Source || perm[last] != q.Target {
				return true
			}
			return emit(perm)
		})
	} else {
		p.subsets(g, q, emit)
	}

	if ctxErr != nil {
		return nil, ctxErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Permutation) subsets(g *graph.AttackGraph, q Query, emit func([]int) bool) {
	var inner []int
	for _, id := range g.NodeIDs() {
		if id != q.Source && id != q.Target {
			inner = append(inner, id)
		}
	}

	candidate := make([]int, 0, len(inner)+2)
	for mask := 0; mask < 1<<len(inner); mask++ {
		var subset []int
		for i, id := range inner {
			if mask&(1<<i) != 0 {
				subset = append(subset, id)
			}
		}
		if q.MaxDepth > 0 && len(subset)+1 > q.MaxDepth {
			continue
		}
		more := permute(subset, func(perm []int) bool {
			candidate = candidate[:0]
			candidate = append(candidate, q.Source)
			candidate = append(candidate, perm...)
			candidate = append(candidate, q.Target)
			return emit(candidate)
		})
		if !more {
			return
		}
	}
}

// isWalk reports whether every consecutive pair is an edge. Candidates are
// built from distinct ids, so a walk here is a simple path.
func isWalk(g *graph.AttackGraph, ids []int) bool {
	for i := 1; i < len(ids); i++ {
		if !g.HasEdge(ids[i-1], ids[i]) {
			return false
		}
	}
	return true
}

// permute calls visit for every ordering of a (Heap's algorithm, in place).
// It stops early and returns false when visit does.
func permute(a []int, visit func([]int) bool) bool {
	if !visit(a) {
		return false
	}
	c := make([]int, len(a))
	for i := 0; i < len(a); {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			if !visit(a) {
				return false
			}
			c[i]++
			i = 0
			continue
		}
		c[i] = 0
		i++
	}
	return true
}
