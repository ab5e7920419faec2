package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s (use .yaml, .yml, or .json)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Document is the on-disk form of an attack graph.
type Document struct {
	Nodes []NodeSpec `yaml:"nodes" json:"nodes"`
	Edges [][2]int   `yaml:"edges" json:"edges"`
}

// NodeSpec is one vulnerability entry. CVSS may be given directly or as a
// CVSS v3.0, v3.1 or v4.0 vector string; an explicit score wins.
type NodeSpec struct {
	ID               int      `yaml:"id" json:"id"`
	CVEID            string   `yaml:"cve_id" json:"cve_id"`
	Definition       string   `yaml:"definition,omitempty" json:"definition,omitempty"`
	CVSS             *float64 `yaml:"cvss,omitempty" json:"cvss,omitempty"`
	CVSSVector       string   `yaml:"cvss_vector,omitempty" json:"cvss_vector,omitempty"`
	Exploitability   float64  `yaml:"exploitability" json:"exploitability"`
	CodeAvailability float64  `yaml:"code_availability" json:"code_availability"`
	DefenseIntensity float64  `yaml:"defense_intensity" json:"defense_intensity"`
	ImpactScore      float64  `yaml:"impact_score" json:"impact_score"`
}

func (s NodeSpec) vulnerability() (Vulnerability, error) {
	v := Vulnerability{
		ID:               s.ID,
		CVEID:            s.CVEID,
		Definition:       s.Definition,
		Exploitability:   s.Exploitability,
		CodeAvailability: s.CodeAvailability,
		DefenseIntensity: s.DefenseIntensity,
		ImpactScore:      s.ImpactScore,
	}
	switch {
	case s.CVSS != nil:
		v.CVSS = *s.CVSS
	case s.CVSSVector != "":
		score, err := ScoreVector(s.CVSSVector)
		if err != nil {
			return Vulnerability{}, fmt.Errorf("node %d: %w", s.ID, err)
		}
		v.CVSS = score
	}
	if v.Definition == "" && v.CVEID != "" {
		v.Definition = "Description of " + v.CVEID
	}
	return v, nil
}

// ScoreVector computes the base score of a CVSS vector string.
func ScoreVector(vector string) (float64, error) {
	switch {
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		c, err := gocvss30.ParseVector(vector)
		if err != nil {
			return 0, fmt.Errorf("failed to parse cvss vector %q: %w", vector, err)
		}
		return c.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		c, err := gocvss31.ParseVector(vector)
		if err != nil {
			return 0, fmt.Errorf("failed to parse cvss vector %q: %w", vector, err)
		}
		return c.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:4.0/"):
		c, err := gocvss40.ParseVector(vector)
		if err != nil {
			return 0, fmt.Errorf("failed to parse cvss vector %q: %w", vector, err)
		}
		return c.Score(), nil
	default:
		return 0, fmt.Errorf("unsupported cvss vector %q", vector)
	}
}

// Build turns the document into a graph. Unlike AddNode, a repeated id is an
// error here, and every edge goes through AddEdge validation.
func (d *Document) Build() (*AttackGraph, error) {
	g := NewAttackGraph()
	for _, entry := range d.Nodes {
		if g.HasNode(entry.ID) {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateNode, entry.ID)
		}
		v, err := entry.vulnerability()
		if err != nil {
			return nil, err
		}
		g.AddNode(v)
	}
	for i, e := range d.Edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return g, nil
}

// NewDocument captures g in document form, edges in insertion order.
func NewDocument(g *AttackGraph) *Document {
	d := &Document{}
	for _, v := range g.Nodes() {
		cvss := v.CVSS
		d.Nodes = append(d.Nodes, NodeSpec{
			ID:               v.ID,
			CVEID:            v.CVEID,
			Definition:       v.Definition,
			CVSS:             &cvss,
			Exploitability:   v.Exploitability,
			CodeAvailability: v.CodeAvailability,
			DefenseIntensity: v.DefenseIntensity,
			ImpactScore:      v.ImpactScore,
		})
	}
	for _, e := range g.edges {
		d.Edges = append(d.Edges, [2]int{e.From, e.To})
	}
	return d
}

func Decode(r io.Reader, format Format) (*AttackGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}

	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML graph: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON graph: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return doc.Build()
}

func Encode(w io.Writer, g *AttackGraph, format Format) error {
	doc := NewDocument(g)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadFile reads a graph document, choosing the format by extension.
func LoadFile(path string) (*AttackGraph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	g, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// SaveFile writes g to path, choosing the format by extension.
func SaveFile(path string, g *AttackGraph) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Encode(f, g, format)
}

// Severity maps a CVSS score to its qualitative band.
func Severity(cvss float64) string {
	switch {
	case cvss == 0 || math.IsNaN(cvss):
		return "NONE"
	case cvss < 4.0:
		return "LOW"
	case cvss < 7.0:
		return "MEDIUM"
	case cvss < 9.0:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}
