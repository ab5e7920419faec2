package graph

import (
	"fmt"
	"io"
	"strings"
)

// DOTOptions controls ExportDOT. Edges that lie on any of Highlight are
// drawn bold and red.
type DOTOptions struct {
	Name      string
	Highlight [][]int
}

// ExportDOT writes the graph in Graphviz DOT format to the writer
func (g *AttackGraph) ExportDOT(w io.Writer, opts DOTOptions) error {
	name := opts.Name
	if name == "" {
		name = "AttackGraph"
	}
	if _, err := fmt.Fprintf(w, "digraph %s {\n", name); err != nil {
		return err
	}

	// Default styles
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=filled, fontname=\"Arial\"];")
	fmt.Fprintln(w, "  edge [fontname=\"Arial\", fontsize=10];")

	onPath := make(map[Edge]bool)
	for _, p := range opts.Highlight {
		for i := 1; i < len(p); i++ {
			onPath[Edge{From: p[i-1], To: p[i]}] = true
		}
	}

	for _, node := range g.Nodes() {
		color := "white"
		switch Severity(node.CVSS) {
		case "CRITICAL":
			color = "#ef9a9a" // Red
		case "HIGH":
			color = "#ffcc80" // Orange
		case "MEDIUM":
			color = "#fff59d" // Yellow
		case "LOW":
			color = "#c5e1a5" // Green
		}

		label := fmt.Sprintf("%d\n%s\nCVSS %.1f", node.ID, node.CVEID, node.CVSS)
		label = strings.ReplaceAll(label, "\"", "\\\"")
		label = strings.ReplaceAll(label, "\n", "\\n")
		fmt.Fprintf(w, "  \"%d\" [label=\"%s\", fillcolor=\"%s\"];\n", node.ID, label, color)
	}

	// parallel edges are drawn once
	drawn := make(map[Edge]bool)
	for _, e := range g.edges {
		if drawn[e] {
			continue
		}
		drawn[e] = true
		if onPath[e] {
			fmt.Fprintf(w, "  \"%d\" -> \"%d\" [color=\"red\", penwidth=2];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(w, "  \"%d\" -> \"%d\";\n", e.From, e.To)
	}

	if _, err := fmt.Fprintln(w, "}"); err != nil {
		return err
	}
	return nil
}
