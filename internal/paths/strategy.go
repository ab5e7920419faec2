// Package paths enumerates simple attack paths between two vulnerabilities.
//
// Every strategy answers the same question, all simple directed paths from
// Query.Source to Query.Target, and returns the same path set on the same
// input. They differ in cost and in whether they can filter by risk.
// No strategy guarantees an order; use Canonical when order matters.
package paths

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/25smoking/pathrisk/internal/risk"
)

var (
	// ErrImpracticalInputSize is returned by the permutation strategy before
	// any work is done when the graph is too large for factorial search.
	ErrImpracticalInputSize = errors.New("impractical input size")

	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Path is an ordered sequence of node ids.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " -> ")
}

// Key is a compact identity for set comparisons.
func (p Path) Key() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Query selects the paths to enumerate.
type Query struct {
	Source int
	Target int
	// Threshold, when set, drops completed paths whose path-level risk is
	// below it. Only strategies that report FiltersByRisk honour it.
	Threshold *float64
	// MaxDepth > 0 caps the path length in edges.
	MaxDepth int
	// Scorer overrides the default risk.Model for the graph.
	Scorer risk.Scorer
}

// WithThreshold returns a copy of q filtering at t.
func (q Query) WithThreshold(t float64) Query {
	q.Threshold = &t
	return q
}

func (q Query) scorer(g *graph.AttackGraph) risk.Scorer {
	if q.Scorer != nil {
		return q.Scorer
	}
	return risk.NewModel(g)
}

func (q Query) keep(r float64) bool {
	return q.Threshold == nil || r >= *q.Threshold
}

// Result is one enumerated path. Risk is only meaningful when Scored.
type Result struct {
	Path   Path    `json:"path"`
	Risk   float64 `json:"risk,omitempty"`
	Scored bool    `json:"scored"`
}

// Strategy is one path enumeration algorithm. Implementations never mutate
// the graph, so several may run concurrently on the same graph.
type Strategy interface {
	Name() string
	Find(ctx context.Context, g *graph.AttackGraph, q Query) ([]Result, error)
}

type riskFilterer interface {
	FiltersByRisk() bool
}

// FiltersByRisk reports whether s honours Query.Threshold.
func FiltersByRisk(s Strategy) bool {
	f, ok := s.(riskFilterer)
	return ok && f.FiltersByRisk()
}

// Options configures strategies built by Lookup.
type Options struct {
	PermutationMaxNodes int
	Hamiltonian         bool
	Prune               bool
}

const (
	NamePermutation = "permutation"
	NameBFS         = "bfs"
	NameDFS         = "dfs"
	NameSimple      = "simple"
	NameShortest    = "shortest"
)

var registry = map[string]func(Options) Strategy{
	NamePermutation: func(o Options) Strategy {
		return &Permutation{MaxNodes: o.PermutationMaxNodes, Hamiltonian: o.Hamiltonian}
	},
	NameBFS:      func(Options) Strategy { return &BFS{} },
	NameDFS:      func(o Options) Strategy { return &DFS{Prune: o.Prune} },
	NameSimple:   func(Options) Strategy { return &Simple{} },
	NameShortest: func(Options) Strategy { return &Shortest{} },
}

// Lookup builds the strategy registered under name.
func Lookup(name string, opts Options) (Strategy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
	return build(opts), nil
}

// LookupAll resolves every name, failing on the first unknown one.
func LookupAll(names []string, opts Options) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		s, err := Lookup(n, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Canonical sorts results lexicographically by path, in place.
func Canonical(results []Result) []Result {
	sort.Slice(results, func(i, j int) bool {
		return less(results[i].Path, results[j].Path)
	})
	return results
}

func less(a, b Path) bool {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return len(a) < len(b)
}

// KeySet returns the set of path keys in results.
func KeySet(results []Result) map[string]struct{} {
	set := make(map[string]struct{}, len(results))
	for _, r := range results {
		set[r.Path.Key()] = struct{}{}
	}
	return set
}

// SamePaths reports whether a and b hold the same set of paths.
func SamePaths(a, b []Result) bool {
	sa, sb := KeySet(a), KeySet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if _, ok := sb[k]; !ok {
			return false
		}
	}
	return true
}

func unscored(paths [][]int) []Result {
	out := make([]Result, 0, len(paths))
	for _, p := range paths {
		out = append(out, Result{Path: p})
	}
	return out
}

func checkEndpoints(g *graph.AttackGraph, q Query) error {
	if !g.HasNode(q.Source) {
		return fmt.Errorf("source: %w: %d", graph.ErrNodeNotFound, q.Source)
	}
	if !g.HasNode(q.Target) {
		return fmt.Errorf("target: %w: %d", graph.ErrNodeNotFound, q.Target)
	}
	return nil
}
