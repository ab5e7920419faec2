package main

import (
	"io"
	"strings"
	"time"

	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/25smoking/pathrisk/internal/paths"
	"github.com/25smoking/pathrisk/internal/report"
	"github.com/25smoking/pathrisk/internal/risk"
	"github.com/spf13/cobra"
)

type pathsOutput struct {
	Strategy  string         `json:"strategy"`
	Source    int            `json:"source"`
	Target    int            `json:"target"`
	Threshold *float64       `json:"threshold,omitempty"`
	Elapsed   time.Duration  `json:"elapsed_ns"`
	Count     int            `json:"count"`
	Paths     []paths.Result `json:"paths"`
}

func newPathsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Enumerate attack paths from source to target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPaths(cmd)
		},
	}
	f := cmd.Flags()
	f.String("strategy", "", "strategy: "+joinNames())
	f.Int("permutation-max-nodes", 0, "node limit of the permutation strategy")
	f.Bool("hamiltonian", false, "permutation only tries orderings of every node")
	f.Bool("prune", false, "dfs abandons partial paths that cannot reach the threshold")
	f.StringP("format", "f", "", "output format: table, json or csv")
	f.String("json", "", "also write the paths as JSON to this file")
	f.String("csv", "", "also write the paths as CSV to this file")
	return cmd
}

// query builds the path query from the configuration.
func (a *app) query(g *graph.AttackGraph, target int) (paths.Query, error) {
	q := paths.Query{
		Source:    a.cfg.Source,
		Target:    target,
		Threshold: a.cfg.Threshold,
		MaxDepth:  a.cfg.MaxDepth,
	}
	if a.cfg.CacheSize > 0 {
		cached, err := risk.NewCachedModel(g, a.cfg.CacheSize)
		if err != nil {
			return q, err
		}
		q.Scorer = cached
	}
	return q, nil
}

func (a *app) runPaths(cmd *cobra.Command) error {
	g, target, err := a.loadGraph()
	if err != nil {
		return err
	}
	strategy, err := paths.Lookup(a.cfg.Strategy, a.cfg.PathOptions())
	if err != nil {
		return err
	}
	q, err := a.query(g, target)
	if err != nil {
		return err
	}
	if q.Threshold != nil && !paths.FiltersByRisk(strategy) {
		a.log.Warnw("strategy does not filter by risk, threshold ignored", "strategy", strategy.Name())
	}

	start := time.Now()
	results, err := strategy.Find(cmd.Context(), g, q)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}
	results = paths.Canonical(results)
	a.log.Infow("paths enumerated", "strategy", strategy.Name(), "paths", len(results), "elapsed", elapsed)

	out := pathsOutput{
		Strategy:  strategy.Name(),
		Source:    q.Source,
		Target:    q.Target,
		Threshold: q.Threshold,
		Elapsed:   elapsed,
		Count:     len(results),
		Paths:     results,
	}
	if out.Paths == nil {
		out.Paths = []paths.Result{}
	}

	w := cmd.OutOrStdout()
	switch a.cfg.Output.Format {
	case "json":
		err = report.WriteJSON(w, out)
	case "csv":
		err = report.WritePathsCSV(w, results)
	default:
		report.NewConsole(w, !a.noColor).PrintPaths(strategy.Name(), results, elapsed)
	}
	if err != nil {
		return err
	}

	if path := a.cfg.Output.JSON; path != "" {
		if err := report.SaveFile(path, func(w io.Writer) error { return report.WriteJSON(w, out) }); err != nil {
			return err
		}
		a.log.Infow("report saved", "path", path)
	}
	if path := a.cfg.Output.CSV; path != "" {
		if err := report.SaveFile(path, func(w io.Writer) error { return report.WritePathsCSV(w, results) }); err != nil {
			return err
		}
		a.log.Infow("report saved", "path", path)
	}
	return nil
}

func joinNames() string {
	return strings.Join(paths.Names(), ", ")
}
