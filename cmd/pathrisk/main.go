package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/25smoking/pathrisk/internal/config"
	"github.com/25smoking/pathrisk/internal/embedded"
	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/25smoking/pathrisk/internal/logging"
	"github.com/25smoking/pathrisk/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	noColor    bool

	cfg      *config.Config
	log      *zap.SugaredLogger
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pathrisk",
		Short: "Risk-scored attack path enumeration",
		Long: `pathrisk models an attack graph of vulnerabilities, enumerates the simple
attack paths between two of them, scores every path by exploitation risk and
compares the enumeration strategies against each other.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (.yaml, .yml or .json)")
	pf.BoolVar(&a.noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable ANSI colours")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("otel-endpoint", "", "OTLP/HTTP endpoint for traces, empty disables tracing")
	pf.Bool("otel-insecure", false, "use plain HTTP for the OTLP endpoint")
	pf.StringP("graph", "g", "", "graph document, empty uses the built-in reference graph")
	pf.IntP("source", "s", 0, "source node id")
	pf.IntP("target", "t", 0, "target node id (default: highest node id)")
	pf.Float64("threshold", 0, "drop paths whose risk is below this value")
	pf.Int("max-depth", 0, "maximum path length in edges, 0 for no limit")
	pf.Int("cache-size", 0, "score through an LRU of this many nodes, 0 disables it")

	root.AddCommand(
		newPathsCmd(a),
		newBenchCmd(a),
		newRiskCmd(a),
		newGraphCmd(a),
		newGenerateCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags, err := changedFlags(cmd)
	if err != nil {
		return err
	}
	if err := cfg.MergeWithFlags(flags); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	if a.log, err = logging.New(cfg.LogLevel); err != nil {
		return err
	}
	a.shutdown, err = telemetry.Init(cmd.Context(), cfg.OTELEndpoint, cfg.OTELService, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("failed to start tracing: %w", err)
	}
	return nil
}

func (a *app) teardown() error {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			a.log.Warnw("trace export did not finish", "err", err)
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

// loadGraph returns the configured graph and the resolved target.
func (a *app) loadGraph() (*graph.AttackGraph, int, error) {
	var (
		g   *graph.AttackGraph
		err error
	)
	if a.cfg.Graph == "" {
		g, err = embedded.ReferenceGraph()
	} else {
		g, err = graph.LoadFile(a.cfg.Graph)
	}
	if err != nil {
		return nil, 0, err
	}
	if g.NodeCount() == 0 {
		return nil, 0, fmt.Errorf("graph has no nodes")
	}

	target := 0
	switch {
	case a.cfg.Target != nil:
		target = *a.cfg.Target
	case a.cfg.Graph == "":
		target = embedded.ReferenceSink
	default:
		ids := g.NodeIDs()
		target = ids[len(ids)-1]
	}
	a.log.Debugw("graph loaded", "path", a.cfg.Graph, "nodes", g.NodeCount(), "edges", g.EdgeCount(), "target", target)
	return g, target, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
