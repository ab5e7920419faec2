package graph

import (
	"fmt"
	"sort"
)

// Vulnerability is a single exploitable weakness in the attack graph.
// Records are treated as immutable once inserted.
type Vulnerability struct {
	ID               int     `yaml:"id" json:"id"`
	CVEID            string  `yaml:"cve_id" json:"cve_id"`
	Definition       string  `yaml:"definition" json:"definition"`
	CVSS             float64 `yaml:"cvss" json:"cvss"`
	Exploitability   float64 `yaml:"exploitability" json:"exploitability"`
	CodeAvailability float64 `yaml:"code_availability" json:"code_availability"`
	DefenseIntensity float64 `yaml:"defense_intensity" json:"defense_intensity"`
	ImpactScore      float64 `yaml:"impact_score" json:"impact_score"`
}

func (v Vulnerability) String() string {
	return fmt.Sprintf("Node(%d, %s, CVSS=%.1f, IS=%.1f)", v.ID, v.CVEID, v.CVSS, v.ImpactScore)
}

// Edge is an exploitation-order relation: From must be exploited before To.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type adjacency struct {
	succ []int // distinct, first-insertion order
	pred []int
	// edge counts with multiplicity
	out int
	in  int
}

// AttackGraph is a finite directed graph of vulnerabilities.
//
// Adjacency is indexed on insertion so Successors, Predecessors, Degree and
// HasEdge are constant time per call. The graph is built once and then only
// read; read methods never mutate, so a built graph may be shared between
// goroutines.
type AttackGraph struct {
	nodes map[int]*Vulnerability
	edges []Edge
	adj   map[int]*adjacency
	// multiplicity of each (from, to) pair
	edgeSet map[Edge]int
}

func NewAttackGraph() *AttackGraph {
	return &AttackGraph{
		nodes:   make(map[int]*Vulnerability),
		edges:   make([]Edge, 0),
		adj:     make(map[int]*adjacency),
		edgeSet: make(map[Edge]int),
	}
}

// AddNode inserts v, replacing any record already stored under v.ID.
// Existing edges touching the id are kept.
func (g *AttackGraph) AddNode(v Vulnerability) {
	rec := v
	g.nodes[v.ID] = &rec
	if _, ok := g.adj[v.ID]; !ok {
		g.adj[v.ID] = &adjacency{}
	}
}

// AddEdge appends the relation from -> to. Self-loops and edges with an
// endpoint that is not in the graph are rejected with ErrInvalidEdge.
// Parallel edges are accepted and counted with multiplicity.
func (g *AttackGraph) AddEdge(from, to int) error {
	if from == to {
		return fmt.Errorf("%w: self-loop on %d", ErrInvalidEdge, from)
	}
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: (%d, %d): unknown source %d", ErrInvalidEdge, from, to, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: (%d, %d): unknown target %d", ErrInvalidEdge, from, to, to)
	}

	e := Edge{From: from, To: to}
	g.edges = append(g.edges, e)
	if g.edgeSet[e] == 0 {
		g.adj[from].succ = append(g.adj[from].succ, to)
		g.adj[to].pred = append(g.adj[to].pred, from)
	}
	g.edgeSet[e]++
	g.adj[from].out++
	g.adj[to].in++
	return nil
}

// Node returns a copy of the record stored under id.
func (g *AttackGraph) Node(id int) (Vulnerability, error) {
	v, ok := g.nodes[id]
	if !ok {
		return Vulnerability{}, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return *v, nil
}

func (g *AttackGraph) HasNode(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether at least one from -> to edge exists.
func (g *AttackGraph) HasEdge(from, to int) bool {
	return g.edgeSet[Edge{From: from, To: to}] > 0
}

// Successors returns the distinct targets of id's outgoing edges, ordered by
// first insertion. The returned slice must not be modified.
func (g *AttackGraph) Successors(id int) ([]int, error) {
	a, ok := g.adj[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return a.succ, nil
}

// Predecessors returns the distinct sources of id's incoming edges, ordered
// by first insertion. The returned slice must not be modified.
func (g *AttackGraph) Predecessors(id int) ([]int, error) {
	a, ok := g.adj[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return a.pred, nil
}

// Neighbors returns successors followed by predecessors. A node that is
// both appears twice.
func (g *AttackGraph) Neighbors(id int) ([]int, error) {
	a, ok := g.adj[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	out := make([]int, 0, len(a.succ)+len(a.pred))
	out = append(out, a.succ...)
	out = append(out, a.pred...)
	return out, nil
}

// Degree counts every edge touching id, parallel edges included. It always
// equals len(NaiveNeighbors(id)).
func (g *AttackGraph) Degree(id int) (int, error) {
	a, ok := g.adj[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return a.out + a.in, nil
}

// NaiveNeighbors computes the neighbour list by scanning the whole edge
// list. It is O(|E|) per call and only kept as the reference baseline for
// the indexed adjacency.
func (g *AttackGraph) NaiveNeighbors(id int) ([]int, error) {
	if !g.HasNode(id) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	var out []int
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	return out, nil
}

// NodeIDs returns every node id in ascending order.
func (g *AttackGraph) NodeIDs() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Nodes returns copies of all records ordered by id.
func (g *AttackGraph) Nodes() []Vulnerability {
	ids := g.NodeIDs()
	out := make([]Vulnerability, 0, len(ids))
	for _, id := range ids {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns a copy of the edge list in insertion order.
func (g *AttackGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *AttackGraph) NodeCount() int { return len(g.nodes) }

func (g *AttackGraph) EdgeCount() int { return len(g.edges) }
