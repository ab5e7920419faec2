package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/25smoking/pathrisk/internal/bench"
	"github.com/25smoking/pathrisk/internal/paths"
	"github.com/25smoking/pathrisk/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--log-level", "error", "--no-color"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPathsCommand_ReferenceGraph(t *testing.T) {
	out, err := execute(t, "paths", "-f", "json")
	require.NoError(t, err)

	var got pathsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, paths.NameDFS, got.Strategy)
	assert.Equal(t, 0, got.Source)
	assert.Equal(t, 19, got.Target)
	require.Equal(t, 4, got.Count)
	assert.Equal(t, paths.Path{0, 1, 4, 11, 15, 19}, got.Paths[0].Path)
	for _, r := range got.Paths {
		assert.True(t, r.Scored)
		assert.Positive(t, r.Risk)
	}
}

func TestPathsCommand_ThresholdAndFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "paths.csv")

	all, err := execute(t, "paths", "-f", "json", "--strategy", "simple", "--threshold", "0")
	require.NoError(t, err)
	var base pathsOutput
	require.NoError(t, json.Unmarshal([]byte(all), &base))
	require.Len(t, base.Paths, 4)

	_, err = execute(t, "paths", "--strategy", "simple", "--threshold", "1e9", "--csv", csvPath, "--cache-size", "8")
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "path,hops,risk\n", string(data))
}

func TestPathsCommand_Table(t *testing.T) {
	out, err := execute(t, "paths", "--strategy", "bfs", "--target", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "0 -> 3 -> 9")
	assert.Contains(t, out, "[bfs] finished")
}

func TestPathsCommand_Errors(t *testing.T) {
	_, err := execute(t, "paths", "--strategy", "astar")
	assert.ErrorIs(t, err, paths.ErrUnknownStrategy)

	_, err = execute(t, "paths", "--strategy", "permutation")
	assert.ErrorIs(t, err, paths.ErrImpracticalInputSize)

	_, err = execute(t, "paths", "--target", "99")
	assert.Error(t, err)

	_, err = execute(t, "paths", "--graph", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBenchCommand(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "bench.html")
	promPath := filepath.Join(dir, "bench.prom")

	out, err := execute(t, "bench", "--strategies", "permutation,bfs,dfs,simple", "-f", "json",
		"--html", htmlPath, "--metrics-file", promPath)
	require.NoError(t, err)

	var rep bench.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Agree)
	require.Len(t, rep.Runs, 4)
	assert.True(t, rep.Runs[0].Failed(), "20 nodes is beyond the permutation limit")
	for _, run := range rep.Runs[1:] {
		assert.Equal(t, 4, run.Count, run.Strategy)
	}

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), rep.ID)
	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pathrisk_graph_nodes 20")
}

func TestRiskCommand(t *testing.T) {
	out, err := execute(t, "risk", "-f", "json")
	require.NoError(t, err)

	var got report.RiskSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Nodes, 20)
	require.NotNil(t, got.GraphRisk)
	assert.Positive(t, *got.GraphRisk)
	assert.Positive(t, got.TotalAtomicRisk)

	out, err = execute(t, "risk", "--nodes-only")
	require.NoError(t, err)
	assert.Contains(t, out, "CVE-2023-0020")
	assert.NotContains(t, out, "Graph risk")
}

func TestGenerateThenAnalyse(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "g.json")

	_, err := execute(t, "generate", "--nodes", "7", "--seed", "5", "-o", graphPath)
	require.NoError(t, err)

	out, err := execute(t, "bench", "--graph", graphPath, "--strategies", "permutation,bfs,dfs,simple,shortest")
	require.NoError(t, err)
	assert.Contains(t, out, "all strategies returned the same paths")

	first, err := execute(t, "generate", "--layers", "2", "--width", "3", "--seed", "9")
	require.NoError(t, err)
	second, err := execute(t, "generate", "--layers", "2", "--width", "3", "--seed", "9")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "nodes:"))
}

func TestGraphCommand(t *testing.T) {
	dir := t.TempDir()
	dotPath := filepath.Join(dir, "g.dot")
	docPath := filepath.Join(dir, "g.yaml")

	_, err := execute(t, "graph", "-o", dotPath, "--highlight", "--export", docPath)
	require.NoError(t, err)

	dot, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph AttackGraph")
	assert.Contains(t, string(dot), `color="red"`)

	_, err = execute(t, "paths", "--graph", docPath, "--target", "19", "-f", "csv")
	require.NoError(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy: bfs\ntarget: 8\noutput:\n  format: csv\n"), 0o644))

	out, err := execute(t, "paths", "--config", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"path,hops,risk", "0 -> 3 -> 8,2,"}, lines)

	// flags win over the file
	out, err = execute(t, "paths", "--config", path, "--target", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "0 -> 3 -> 9,2,")
}
