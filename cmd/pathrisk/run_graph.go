package main

import (
	"context"
	"os"

	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/25smoking/pathrisk/internal/paths"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	var (
		outputPath string
		exportPath string
		highlight  bool
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the attack graph as Graphviz DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, target, err := a.loadGraph()
			if err != nil {
				return err
			}

			if outputPath == "" {
				outputPath = a.cfg.Output.DOT
			}
			if outputPath == "" {
				outputPath = "attack_graph.dot"
			}

			opts := graph.DOTOptions{}
			if highlight {
				if opts.Highlight, err = a.highlighted(cmd.Context(), g, target); err != nil {
					return err
				}
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := g.ExportDOT(f, opts); err != nil {
				return err
			}
			a.log.Infow("graph written", "path", outputPath, "nodes", g.NodeCount(), "highlighted", len(opts.Highlight))
			a.log.Info("render it with Graphviz, e.g. dot -Tsvg " + outputPath)

			if exportPath != "" {
				if err := graph.SaveFile(exportPath, g); err != nil {
					return err
				}
				a.log.Infow("graph document written", "path", exportPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&outputPath, "out", "o", "", "DOT output file (default attack_graph.dot)")
	f.StringVar(&exportPath, "export", "", "also write the graph as a .yaml or .json document")
	f.BoolVar(&highlight, "highlight", false, "highlight the paths from source to target that pass the threshold")
	return cmd
}

// highlighted returns the simple paths to draw in red.
func (a *app) highlighted(ctx context.Context, g *graph.AttackGraph, target int) ([][]int, error) {
	q, err := a.query(g, target)
	if err != nil {
		return nil, err
	}
	results, err := (&paths.Simple{}).Find(ctx, g, q)
	if err != nil {
		return nil, err
	}
	out := make([][]int, 0, len(results))
	for _, r := range results {
		out = append(out, r.Path)
	}
	return out, nil
}
