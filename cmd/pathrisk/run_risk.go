package main

import (
	"github.com/25smoking/pathrisk/internal/report"
	"github.com/25smoking/pathrisk/internal/risk"
	"github.com/spf13/cobra"
)

func newRiskCmd(a *app) *cobra.Command {
	var nodesOnly bool
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Print node-level risk and the graph risk between source and target",
		Long: `risk prints the atomic probability and node-level risk of every
vulnerability, the total atomic risk of the graph and, unless --nodes-only is
set, the graph-level risk: the sum of the risk of every simple path from
source to target. The graph-level figure enumerates all simple paths and can
be slow on dense graphs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, target, err := a.loadGraph()
			if err != nil {
				return err
			}
			nodes, err := risk.Summarize(g)
			if err != nil {
				return err
			}
			summary := report.RiskSummary{
				Nodes:           nodes,
				TotalAtomicRisk: risk.TotalAtomicRisk(g),
				Source:          a.cfg.Source,
				Target:          target,
			}
			if !nodesOnly {
				graphRisk, err := risk.GraphRisk(cmd.Context(), g, a.cfg.Source, target)
				if err != nil {
					return err
				}
				summary.GraphRisk = &graphRisk
			}

			w := cmd.OutOrStdout()
			if a.cfg.Output.Format == "json" {
				return report.WriteJSON(w, summary)
			}
			report.NewConsole(w, !a.noColor).PrintRisk(summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&nodesOnly, "nodes-only", false, "skip the path-based graph risk")
	cmd.Flags().StringP("format", "f", "", "output format: table or json")
	return cmd
}
