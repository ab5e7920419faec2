package graph

import (
	"context"
	"fmt"
)

// AllSimplePaths returns every simple directed path from source to target.
// maxDepth > 0 caps the path length in edges. A node is never a path to
// itself, so source == target yields no paths.
//
// The walk keeps an explicit stack of (node, next successor) frames and an
// on-path set; a node is marked when pushed and unmarked when popped.
func (g *AttackGraph) AllSimplePaths(ctx context.Context, source, target, maxDepth int) ([][]int, error) {
	if err := g.checkEndpoints(source, target); err != nil {
		return nil, err
	}
	if source == target {
		return nil, nil
	}

	type frame struct {
		node int
		next int
	}

	var out [][]int
	stack := []frame{{node: source}}
	path := []int{source}
	onPath := map[int]bool{source: true}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := &stack[len(stack)-1]
		succ := g.adj[top.node].succ
		if top.next >= len(succ) || (maxDepth > 0 && len(path) > maxDepth) {
			delete(onPath, top.node)
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			continue
		}

		nb := succ[top.next]
		top.next++
		if onPath[nb] {
			continue
		}
		if nb == target {
			p := make([]int, len(path)+1)
			copy(p, path)
			p[len(path)] = target
			out = append(out, p)
			continue
		}
		onPath[nb] = true
		stack = append(stack, frame{node: nb})
		path = append(path, nb)
	}
	return out, nil
}

// AllShortestPaths returns every minimum-hop path from source to target.
// Distances come from a breadth-first layering; paths are rebuilt by walking
// the predecessor DAG back from target.
func (g *AttackGraph) AllShortestPaths(ctx context.Context, source, target int) ([][]int, error) {
	if err := g.checkEndpoints(source, target); err != nil {
		return nil, err
	}
	if source == target {
		return nil, nil
	}

	dist := map[int]int{source: 0}
	parents := make(map[int][]int)
	frontier := []int{source}
	for len(frontier) > 0 {
		if _, done := dist[target]; done {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var next []int
		for _, u := range frontier {
			for _, v := range g.adj[u].succ {
				d, seen := dist[v]
				switch {
				case !seen:
					dist[v] = dist[u] + 1
					parents[v] = append(parents[v], u)
					next = append(next, v)
				case d == dist[u]+1:
					parents[v] = append(parents[v], u)
				}
			}
		}
		frontier = next
	}
	if _, ok := dist[target]; !ok {
		return nil, nil
	}

	var out [][]int
	var walk func(n int, suffix []int)
	walk = func(n int, suffix []int) {
		suffix = append(suffix, n)
		if n == source {
			p := make([]int, len(suffix))
			for i := range suffix {
				p[i] = suffix[len(suffix)-1-i]
			}
			out = append(out, p)
			return
		}
		for _, parent := range parents[n] {
			walk(parent, suffix)
		}
	}
	walk(target, make([]int, 0, dist[target]+1))
	return out, nil
}

// IsPath reports whether ids is a non-empty simple path in g.
func (g *AttackGraph) IsPath(ids []int) bool {
	if len(ids) == 0 {
		return false
	}
	seen := make(map[int]bool, len(ids))
	for i, id := range ids {
		if !g.HasNode(id) || seen[id] {
			return false
		}
		seen[id] = true
		if i > 0 && !g.HasEdge(ids[i-1], id) {
			return false
		}
	}
	return true
}

func (g *AttackGraph) checkEndpoints(source, target int) error {
	if !g.HasNode(source) {
		return fmt.Errorf("source: %w: %d", ErrNodeNotFound, source)
	}
	if !g.HasNode(target) {
		return fmt.Errorf("target: %w: %d", ErrNodeNotFound, target)
	}
	return nil
}
