package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/25smoking/pathrisk/internal/embedded"
	"github.com/25smoking/pathrisk/internal/paths"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const defaultName = "pathrisk.yaml"

// Config is the complete run configuration. Zero values are filled by
// SetDefaults; flags override file values through MergeWithFlags.
type Config struct {
	Graph  string `yaml:"graph" json:"graph"`
	Source int    `yaml:"source" json:"source"`
	// Target nil means the highest node id in the graph.
	Target    *int     `yaml:"target,omitempty" json:"target,omitempty"`
	Threshold *float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	MaxDepth  int      `yaml:"max_depth" json:"max_depth"`

	// Strategy is used by `paths`, Strategies by `bench`.
	Strategy    string            `yaml:"strategy" json:"strategy"`
	Strategies  []string          `yaml:"strategies" json:"strategies"`
	Permutation PermutationConfig `yaml:"permutation" json:"permutation"`
	Prune       bool              `yaml:"prune" json:"prune"`
	Parallel    bool              `yaml:"parallel" json:"parallel"`
	// CacheSize > 0 scores through an LRU of per-node terms.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	Output OutputConfig `yaml:"output" json:"output"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// Observability
	OTELEndpoint string `yaml:"otel_endpoint" json:"otel_endpoint"`
	OTELInsecure bool   `yaml:"otel_insecure" json:"otel_insecure"`
	OTELService  string `yaml:"otel_service" json:"otel_service"`
}

type PermutationConfig struct {
	MaxNodes    int  `yaml:"max_nodes" json:"max_nodes"`
	Hamiltonian bool `yaml:"hamiltonian" json:"hamiltonian"`
}

type OutputConfig struct {
	Format      string `yaml:"format" json:"format"`
	JSON        string `yaml:"json" json:"json"`
	CSV         string `yaml:"csv" json:"csv"`
	HTML        string `yaml:"html" json:"html"`
	DOT         string `yaml:"dot" json:"dot"`
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = paths.NameDFS
	}
	if len(c.Strategies) == 0 {
		c.Strategies = []string{paths.NamePermutation, paths.NameBFS, paths.NameDFS, paths.NameSimple}
	}
	if c.Permutation.MaxNodes == 0 {
		c.Permutation.MaxNodes = paths.DefaultPermutationMaxNodes
	}
	if c.Output.Format == "" {
		c.Output.Format = "table"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OTELService == "" {
		c.OTELService = "pathrisk"
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Source < 0 {
		return fmt.Errorf("source must be a node id, got %d", c.Source)
	}
	if c.Target != nil && *c.Target < 0 {
		return fmt.Errorf("target must be a node id, got %d", *c.Target)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}
	if c.Permutation.MaxNodes < 1 {
		return fmt.Errorf("permutation.max_nodes must be at least 1")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	if _, err := paths.Lookup(c.Strategy, paths.Options{}); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if _, err := paths.LookupAll(c.Strategies, paths.Options{}); err != nil {
		return fmt.Errorf("strategies: %w", err)
	}
	switch c.Output.Format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unsupported output format: %s (use table, json, or csv)", c.Output.Format)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// PathOptions maps the strategy settings onto paths.Options.
func (c *Config) PathOptions() paths.Options {
	return paths.Options{
		PermutationMaxNodes: c.Permutation.MaxNodes,
		Hamiltonian:         c.Permutation.Hamiltonian,
		Prune:               c.Prune,
	}
}

// loadConfigData reads configPath when given. Otherwise it tries
// config/<defaultName> and falls back to the embedded default.
func loadConfigData(configPath, defaultName string) ([]byte, string, error) {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		return data, configPath, err
	}

	local := filepath.Join("config", defaultName)
	if _, err := os.Stat(local); err == nil {
		data, err := os.ReadFile(local)
		return data, local, err
	}

	// embed paths always use forward slashes
	data, err := embedded.Content.ReadFile("config/" + defaultName)
	return data, "config/" + defaultName, err
}

// Load reads, defaults and validates a configuration. An empty path uses
// config/pathrisk.yaml when present, then the embedded default.
func Load(configPath string) (*Config, error) {
	data, source, err := loadConfigData(configPath, defaultName)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ErrBadFlag reports a flag value of the wrong type.
var ErrBadFlag = errors.New("bad flag value")

// MergeWithFlags applies command-line values over the file configuration.
// Only keys present in flags are applied, so callers pass changed flags only.
func (c *Config) MergeWithFlags(flags map[string]any) error {
	for key, raw := range flags {
		if err := c.mergeFlag(key, raw); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) mergeFlag(key string, raw any) error {
	bad := func() error {
		return fmt.Errorf("%w: %s=%v", ErrBadFlag, key, raw)
	}
	switch key {
	case "graph", "strategy", "format", "json", "csv", "html", "dot", "metrics_file",
		"log_level", "otel_endpoint", "otel_service":
		v, ok := raw.(string)
		if !ok {
			return bad()
		}
		*c.stringField(key) = v
	case "source", "target", "max_depth", "permutation_max_nodes", "cache_size":
		v, ok := raw.(int)
		if !ok {
			return bad()
		}
		switch key {
		case "source":
			c.Source = v
		case "target":
			c.Target = &v
		case "max_depth":
			c.MaxDepth = v
		case "permutation_max_nodes":
			c.Permutation.MaxNodes = v
		case "cache_size":
			c.CacheSize = v
		}
	case "threshold":
		v, ok := raw.(float64)
		if !ok {
			return bad()
		}
		c.Threshold = &v
	case "strategies":
		v, ok := raw.([]string)
		if !ok {
			return bad()
		}
		c.Strategies = v
	case "hamiltonian", "prune", "parallel", "otel_insecure":
		v, ok := raw.(bool)
		if !ok {
			return bad()
		}
		switch key {
		case "hamiltonian":
			c.Permutation.Hamiltonian = v
		case "prune":
			c.Prune = v
		case "parallel":
			c.Parallel = v
		case "otel_insecure":
			c.OTELInsecure = v
		}
	default:
		return fmt.Errorf("%w: unknown key %q", ErrBadFlag, key)
	}
	return nil
}

func (c *Config) stringField(key string) *string {
	switch key {
	case "graph":
		return &c.Graph
	case "strategy":
		return &c.Strategy
	case "format":
		return &c.Output.Format
	case "json":
		return &c.Output.JSON
	case "csv":
		return &c.Output.CSV
	case "html":
		return &c.Output.HTML
	case "dot":
		return &c.Output.DOT
	case "metrics_file":
		return &c.Output.MetricsFile
	case "log_level":
		return &c.LogLevel
	case "otel_endpoint":
		return &c.OTELEndpoint
	default:
		return &c.OTELService
	}
}
