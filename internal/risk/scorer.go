package risk

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Scorer evaluates path-level risk for one fixed graph. Implementations
// must return exactly what PathRisk returns for the same graph.
type Scorer interface {
	PathRisk(path []int) (float64, error)
	// Atomic is the node's unrounded atomic probability.
	Atomic(id int) (float64, error)
	// Contribution is NodeRisk(id) × Degree(id), the node's share of the sum
	// term of PathRisk.
	Contribution(id int) (float64, error)
}

type terms struct {
	atomic       float64
	contribution float64
}

func computeTerms(g Graph, id int) (terms, error) {
	v, err := g.Node(id)
	if err != nil {
		return terms{}, err
	}
	deg, err := g.Degree(id)
	if err != nil {
		return terms{}, err
	}
	return terms{atomic: Atomic(v), contribution: NodeLevel(v) * float64(deg)}, nil
}

func pathRisk(path []int, lookup func(int) (terms, error)) (float64, error) {
	if len(path) == 0 {
		return 0, ErrEmptyPath
	}
	prob := 1.0
	total := 0.0
	for _, id := range path {
		t, err := lookup(id)
		if err != nil {
			return 0, err
		}
		prob *= t.atomic
		total += t.contribution
	}
	return total * Round4(prob), nil
}

// Model scores paths straight from the graph.
type Model struct {
	g Graph
}

func NewModel(g Graph) *Model {
	return &Model{g: g}
}

func (m *Model) PathRisk(path []int) (float64, error) {
	return pathRisk(path, func(id int) (terms, error) { return computeTerms(m.g, id) })
}

func (m *Model) Atomic(id int) (float64, error) {
	return AtomicProbability(m.g, id)
}

func (m *Model) Contribution(id int) (float64, error) {
	t, err := computeTerms(m.g, id)
	return t.contribution, err
}

// CachedModel memoises per-node terms in a bounded LRU. The graph is
// immutable for the lifetime of the scorer, so entries never go stale.
// Safe for concurrent use.
type CachedModel struct {
	g     Graph
	cache *lru.Cache[int, terms]
}

func NewCachedModel(g Graph, size int) (*CachedModel, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[int, terms](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create risk cache: %w", err)
	}
	return &CachedModel{g: g, cache: c}, nil
}

func (m *CachedModel) terms(id int) (terms, error) {
	if t, ok := m.cache.Get(id); ok {
		return t, nil
	}
	t, err := computeTerms(m.g, id)
	if err != nil {
		return terms{}, err
	}
	m.cache.Add(id, t)
	return t, nil
}

func (m *CachedModel) PathRisk(path []int) (float64, error) {
	return pathRisk(path, m.terms)
}

func (m *CachedModel) Atomic(id int) (float64, error) {
	t, err := m.terms(id)
	return t.atomic, err
}

func (m *CachedModel) Contribution(id int) (float64, error) {
	t, err := m.terms(id)
	return t.contribution, err
}

// Len reports how many nodes are cached.
func (m *CachedModel) Len() int {
	return m.cache.Len()
}
