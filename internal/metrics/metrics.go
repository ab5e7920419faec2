package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one process on a private registry. The
// command is one-shot, so metrics are written to a node-exporter textfile
// instead of served.
type Metrics struct {
	registry *prometheus.Registry

	StrategyDuration *prometheus.HistogramVec
	StrategyRuns     *prometheus.CounterVec
	PathsFound       *prometheus.CounterVec
	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StrategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathrisk_strategy_duration_seconds",
			Help:    "wall-clock time of one strategy run",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"strategy"}),
		StrategyRuns: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pathrisk_strategy_runs_total", Help: "strategy runs"}, []string{"strategy", "status"}),
		PathsFound:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pathrisk_paths_found_total", Help: "paths returned"}, []string{"strategy"}),
		GraphNodes:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "pathrisk_graph_nodes", Help: "nodes in the analysed graph"}),
		GraphEdges:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "pathrisk_graph_edges", Help: "edges in the analysed graph"}),
	}
	m.registry.MustRegister(m.StrategyDuration, m.StrategyRuns, m.PathsFound, m.GraphNodes, m.GraphEdges)
	return m
}

// ObserveGraph records the size of the graph under analysis.
func (m *Metrics) ObserveGraph(nodes, edges int) {
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
}

// ObserveRun records one strategy run; err marks it failed.
func (m *Metrics) ObserveRun(strategy string, elapsed time.Duration, found int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StrategyRuns.WithLabelValues(strategy, status).Inc()
	m.StrategyDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if err == nil {
		m.PathsFound.WithLabelValues(strategy).Add(float64(found))
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes every collector in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
