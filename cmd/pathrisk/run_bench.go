package main

import (
	"fmt"
	"io"

	"github.com/25smoking/pathrisk/internal/bench"
	"github.com/25smoking/pathrisk/internal/metrics"
	"github.com/25smoking/pathrisk/internal/paths"
	"github.com/25smoking/pathrisk/internal/report"
	"github.com/25smoking/pathrisk/internal/telemetry"
	"github.com/spf13/cobra"
)

func newBenchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time every strategy on the same query and compare their answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBench(cmd)
		},
	}
	f := cmd.Flags()
	f.StringSlice("strategies", nil, "strategies to run: "+joinNames())
	f.Int("permutation-max-nodes", 0, "node limit of the permutation strategy")
	f.Bool("hamiltonian", false, "permutation only tries orderings of every node")
	f.Bool("prune", false, "dfs abandons partial paths that cannot reach the threshold")
	f.Bool("parallel", false, "run strategies concurrently")
	f.StringP("format", "f", "", "output format: table or json")
	f.String("json", "", "write the benchmark report as JSON to this file")
	f.String("html", "", "write an HTML report to this file")
	f.String("metrics-file", "", "write Prometheus metrics in textfile format to this file")
	return cmd
}

func (a *app) runBench(cmd *cobra.Command) error {
	g, target, err := a.loadGraph()
	if err != nil {
		return err
	}
	strategies, err := paths.LookupAll(a.cfg.Strategies, a.cfg.PathOptions())
	if err != nil {
		return err
	}
	q, err := a.query(g, target)
	if err != nil {
		return err
	}

	m := metrics.New()
	runner := &bench.Runner{
		Logger:   a.log,
		Metrics:  m,
		Tracer:   telemetry.Tracer(),
		Parallel: a.cfg.Parallel,
	}
	rep, err := runner.Run(cmd.Context(), g, q, strategies)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.cfg.Output.Format == "json" {
		if err := report.WriteJSON(w, rep); err != nil {
			return err
		}
	} else {
		report.NewConsole(w, !a.noColor).PrintBench(rep)
	}

	if path := a.cfg.Output.JSON; path != "" {
		if err := report.SaveFile(path, func(w io.Writer) error { return report.WriteJSON(w, rep) }); err != nil {
			return err
		}
		a.log.Infow("report saved", "path", path)
	}
	if path := a.cfg.Output.HTML; path != "" {
		if err := report.SaveFile(path, func(w io.Writer) error { return report.GenerateHTML(w, rep) }); err != nil {
			return err
		}
		a.log.Infow("HTML report saved", "path", path)
	}
	if path := a.cfg.Output.MetricsFile; path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		a.log.Infow("metrics saved", "path", path)
	}

	if !rep.Agree {
		return fmt.Errorf("strategies returned different path sets (run %s)", rep.ID)
	}
	return nil
}
