package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/25smoking/pathrisk/internal/bench"
	"github.com/25smoking/pathrisk/internal/paths"
	"github.com/25smoking/pathrisk/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []paths.Result {
	return []paths.Result{
		{Path: paths.Path{0, 2, 3}, Risk: 4.25, Scored: true},
		{Path: paths.Path{0, 1, 3}, Risk: 4.0, Scored: true},
	}
}

func sampleReport() *bench.Report {
	threshold := 3.0
	return &bench.Report{
		ID:    "7d1f3c3e-0000-4000-8000-000000000001",
		Graph: bench.GraphInfo{Nodes: 4, Edges: 4},
		Query: bench.QueryInfo{Source: 0, Target: 3, Threshold: &threshold},
		Runs: []bench.Run{
			{Strategy: "bfs", Elapsed: 40 * time.Microsecond, Count: 2, Results: []paths.Result{{Path: paths.Path{0, 1, 3}}, {Path: paths.Path{0, 2, 3}}}},
			{Strategy: "dfs", Elapsed: 25 * time.Microsecond, Count: 2, Results: sampleResults(), FiltersByRisk: true, PeakRSSGrowth: 3 << 20},
			{Strategy: "permutation", Error: "impractical input size"},
		},
		Agree: true,
	}
}

func TestConsole_PrintPaths(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).PrintPaths("dfs", sampleResults(), 3*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "Paths (dfs)")
	assert.Contains(t, out, "0 -> 1 -> 3")
	assert.Contains(t, out, "4.2500")
	assert.Less(t, strings.Index(out, "0 -> 1 -> 3"), strings.Index(out, "0 -> 2 -> 3"), "paths are listed in order")
	assert.Contains(t, out, "[dfs] finished in 3ms, 2 paths")
	assert.NotContains(t, out, "\033[")
}

func TestConsole_PrintRisk(t *testing.T) {
	var buf bytes.Buffer
	graphRisk := 8.25
	NewConsole(&buf, true).PrintRisk(RiskSummary{
		Nodes: []risk.NodeSummary{
			{ID: 0, CVEID: "CVE-2023-0001", CVSS: 9.8, Severity: "CRITICAL", Degree: 2, Atomic: 0.5, NodeRisk: 9.8},
		},
		TotalAtomicRisk: 0.5,
		GraphRisk:       &graphRisk,
		Source:          0,
		Target:          3,
	})

	out := buf.String()
	assert.Contains(t, out, "CVE-2023-0001")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, ColorBold)
	assert.Contains(t, out, "0.5000")
	assert.Contains(t, out, "Graph risk 0 -> 3:")
	assert.Contains(t, out, "8.2500")
}

func TestConsole_PrintBench(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false).PrintBench(sampleReport())

	out := buf.String()
	assert.Contains(t, out, "threshold 3.0000")
	assert.Contains(t, out, "impractical input size")
	assert.Contains(t, out, "3.0 MiB")
	assert.Contains(t, out, "Fastest: dfs")
	assert.Contains(t, out, "all strategies returned the same paths")
}

func TestWritePathsCSV(t *testing.T) {
	var buf bytes.Buffer
	results := append(sampleResults(), paths.Result{Path: paths.Path{0, 3}})
	require.NoError(t, WritePathsCSV(&buf, results))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"path", "hops", "risk"},
		{"0 -> 1 -> 3", "2", "4"},
		{"0 -> 2 -> 3", "2", "4.25"},
		{"0 -> 3", "1", ""},
	}, rows)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var back bench.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "dfs", back.Runs[1].Strategy)
	assert.Equal(t, 25*time.Microsecond, back.Runs[1].Elapsed)
	assert.Equal(t, 3.0, *back.Query.Threshold)
}

func TestGenerateHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.html")
	require.NoError(t, SaveFile(path, func(w io.Writer) error {
		return GenerateHTML(w, sampleReport())
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "7d1f3c3e-0000-4000-8000-000000000001")
	assert.Contains(t, out, "Paths from dfs")
	assert.Contains(t, out, "0 -&gt; 2 -&gt; 3")
	assert.Contains(t, out, "4.2500")
	assert.Contains(t, out, "3.0 MiB")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "2.0 GiB", FormatBytes(2<<30))
}
