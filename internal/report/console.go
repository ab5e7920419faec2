package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/25smoking/pathrisk/internal/bench"
	"github.com/25smoking/pathrisk/internal/paths"
	"github.com/25smoking/pathrisk/internal/risk"
	"github.com/jedib0t/go-pretty/table"
)

// ANSI colour codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

const (
	IconSuccess = "✓"
	IconWarning = "⚠"
	IconError   = "✗"
)

// Console prints human-readable reports. Colour is optional so output can
// be piped.
type Console struct {
	w     io.Writer
	color bool
}

func NewConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

func (c *Console) paint(color, s string) string {
	if !c.color {
		return s
	}
	return color + s + ColorReset
}

func (c *Console) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(c.w)
	t.SetStyle(table.StyleDefault)
	return t
}

func (c *Console) PrintSection(title string) {
	line := strings.Repeat("─", 65)
	fmt.Fprintf(c.w, "\n%s\n", c.paint(ColorBlue, "┌"+line+"┐"))
	fmt.Fprintf(c.w, "%s %s %s\n", c.paint(ColorBlue, "│"), c.paint(ColorBold+ColorWhite, fmt.Sprintf("%-63s", title)), c.paint(ColorBlue, "│"))
	fmt.Fprintf(c.w, "%s\n\n", c.paint(ColorBlue, "└"+line+"┘"))
}

// PrintPaths lists the results of one strategy, ordered by path.
func (c *Console) PrintPaths(strategy string, results []paths.Result, elapsed time.Duration) {
	c.PrintSection(fmt.Sprintf("Paths (%s)", strategy))

	t := c.newTable()
	t.AppendHeader(table.Row{"#", "Path", "Hops", "Risk"})
	for i, r := range paths.Canonical(results) {
		riskCell := "-"
		if r.Scored {
			riskCell = fmt.Sprintf("%.4f", r.Risk)
		}
		t.AppendRow(table.Row{i + 1, r.Path.String(), len(r.Path) - 1, riskCell})
	}
	t.AppendFooter(table.Row{"", "Total", len(results), ""})
	t.Render()

	c.printElapsed(strategy, elapsed, len(results))
}

func (c *Console) printElapsed(name string, elapsed time.Duration, found int) {
	icon, color := IconSuccess, ColorGreen
	if found == 0 {
		icon, color = IconWarning, ColorYellow
	}
	fmt.Fprintf(c.w, "%s %s finished in %s, %s paths\n",
		icon, c.paint(color, "["+name+"]"), c.paint(ColorDim, elapsed.String()), c.paint(color, fmt.Sprint(found)))
}

// RiskSummary is everything the risk report shows.
type RiskSummary struct {
	Nodes           []risk.NodeSummary `json:"nodes"`
	TotalAtomicRisk float64            `json:"total_atomic_risk"`
	// GraphRisk is set when a source and target were given.
	GraphRisk *float64 `json:"graph_risk,omitempty"`
	Source    int      `json:"source,omitempty"`
	Target    int      `json:"target,omitempty"`
}

func (c *Console) PrintRisk(s RiskSummary) {
	c.PrintSection("Node risk")

	t := c.newTable()
	t.AppendHeader(table.Row{"ID", "CVE", "CVSS", "Severity", "Degree", "Atomic", "Node risk"})
	for _, n := range s.Nodes {
		t.AppendRow(table.Row{
			n.ID, n.CVEID, fmt.Sprintf("%.1f", n.CVSS), c.severity(n.Severity), n.Degree,
			fmt.Sprintf("%.4f", n.Atomic), fmt.Sprintf("%.4f", n.NodeRisk),
		})
	}
	t.Render()

	fmt.Fprintf(c.w, "\n  %s %s\n", c.paint(ColorDim, "Total atomic risk:"), c.paint(ColorBold, fmt.Sprintf("%.4f", s.TotalAtomicRisk)))
	if s.GraphRisk != nil {
		fmt.Fprintf(c.w, "  %s %s\n", c.paint(ColorDim, fmt.Sprintf("Graph risk %d -> %d:", s.Source, s.Target)),
			c.paint(ColorBold, fmt.Sprintf("%.4f", *s.GraphRisk)))
	}
}

func (c *Console) severity(level string) string {
	switch level {
	case "CRITICAL":
		return c.paint(ColorRed+ColorBold, level)
	case "HIGH":
		return c.paint(ColorRed, level)
	case "MEDIUM":
		return c.paint(ColorYellow, level)
	case "LOW":
		return c.paint(ColorCyan, level)
	default:
		return level
	}
}

// PrintBench shows one row per strategy and the agreement verdict.
func (c *Console) PrintBench(rep *bench.Report) {
	c.PrintSection("Benchmark " + rep.ID)

	fmt.Fprintf(c.w, "  %s %d nodes, %d edges, %d -> %d",
		c.paint(ColorDim, "Graph:"), rep.Graph.Nodes, rep.Graph.Edges, rep.Query.Source, rep.Query.Target)
	if rep.Query.Threshold != nil {
		fmt.Fprintf(c.w, ", threshold %.4f", *rep.Query.Threshold)
	}
	fmt.Fprintln(c.w)
	if rep.Host.Hostname != "" {
		fmt.Fprintf(c.w, "  %s %s (%s %s), %s, %d cores\n", c.paint(ColorDim, "Host:"),
			rep.Host.Hostname, rep.Host.Platform, rep.Host.PlatformVersion, rep.Host.CPUModel, rep.Host.LogicalCores)
	}
	fmt.Fprintln(c.w)

	t := c.newTable()
	t.AppendHeader(table.Row{"Strategy", "Elapsed", "Paths", "Peak RSS growth", "Status"})
	for _, run := range rep.Runs {
		status := c.paint(ColorGreen, IconSuccess+" ok")
		if run.Failed() {
			status = c.paint(ColorRed, IconError+" "+run.Error)
		}
		t.AppendRow(table.Row{run.Strategy, run.Elapsed.String(), run.Count, FormatBytes(run.PeakRSSGrowth), status})
	}
	t.Render()

	if fastest, ok := rep.Fastest(); ok {
		fmt.Fprintf(c.w, "\n  %s %s (%s)\n", c.paint(ColorDim, "Fastest:"), c.paint(ColorBold, fastest.Strategy), fastest.Elapsed)
	}
	if rep.Agree {
		fmt.Fprintf(c.w, "  %s\n", c.paint(ColorGreen, IconSuccess+" all strategies returned the same paths"))
	} else {
		fmt.Fprintf(c.w, "  %s\n", c.paint(ColorRed, IconError+" strategies returned different paths"))
	}
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
