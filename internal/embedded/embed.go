package embedded

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/25smoking/pathrisk/internal/graph"
)

// Content holds the default configuration and the reference graph. They are
// used when no external file is given or found.
//
//go:embed config/*.yaml
//go:embed graphs/*.yaml
var Content embed.FS

const (
	ConfigPath = "config/pathrisk.yaml"
	GraphPath  = "graphs/manual20.yaml"
)

// Source and sink of the reference graph.
const (
	ReferenceSource = 0
	ReferenceSink   = 19
)

// DefaultConfig returns the raw default configuration document.
func DefaultConfig() ([]byte, error) {
	return Content.ReadFile(ConfigPath)
}

// ReferenceGraph decodes the built-in twenty-node graph.
func ReferenceGraph() (*graph.AttackGraph, error) {
	data, err := Content.ReadFile(GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference graph: %w", err)
	}
	g, err := graph.Decode(bytes.NewReader(data), graph.FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to decode reference graph: %w", err)
	}
	return g, nil
}
