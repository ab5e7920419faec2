package paths

import (
	"context"

	"github.com/25smoking/pathrisk/internal/graph"
)

// BFS expands partial paths in first-in first-out order. A partial path is
// extended along every successor not already on it; a path that reaches
// the target is emitted and not expanded further. The queue holds paths,
// not nodes, so its size is bounded by the number of simple paths.
type BFS struct{}

func (b *BFS) Name() string { return NameBFS }

func (b *BFS) Find(ctx context.Context, g *graph.AttackGraph, q Query) ([]Result, error) {
	if err := checkEndpoints(g, q); err != nil {
		return nil, err
	}
	if q.Source == q.Target {
		return nil, nil
	}

	var out []Result
	queue := []Path{{q.Source}}
	head := 0
	for head < len(queue) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := queue[head]
		queue[head] = nil
		head++
		// drop the consumed prefix once it dominates the backing array
		if head > 1024 && head*2 > len(queue) {
			queue = append([]Path(nil), queue[head:]...)
			head = 0
		}

		last := path[len(path)-1]
		if last == q.Target {
			out = append(out, Result{Path: path})
			continue
		}
		if q.MaxDepth > 0 && len(path)-1 >= q.MaxDepth {
			continue
		}

		succ, err := g.Successors(last)
		if err != nil {
			return nil, err
		}
		for _, nb := range succ {
			if contains(path, nb) {
				continue
			}
			next := make(Path, len(path)+1)
			copy(next, path)
			next[len(path)] = nb
			queue = append(queue, next)
		}
	}
	return out, nil
}

func contains(p Path, id int) bool {
	for _, v := range p {
		if v == id {
			return true
		}
	}
	return false
}
