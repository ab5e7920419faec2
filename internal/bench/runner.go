// Package bench times path strategies against one graph and query.
//
// Each strategy is timed with the wall clock around its Find call only;
// graph construction and reporting are outside the measured window.
package bench

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/25smoking/pathrisk/internal/graph"
	"github.com/25smoking/pathrisk/internal/metrics"
	"github.com/25smoking/pathrisk/internal/paths"
	"github.com/25smoking/pathrisk/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Run is the outcome of one strategy.
type Run struct {
	Strategy      string         `json:"strategy"`
	Elapsed       time.Duration  `json:"elapsed_ns"`
	Count         int            `json:"count"`
	Results       []paths.Result `json:"results,omitempty"`
	FiltersByRisk bool           `json:"filters_by_risk"`
	Error         string         `json:"error,omitempty"`
	// PeakRSSGrowth is how far the process high-water RSS rose during the
	// run. It is attributable to the strategy only in sequential mode.
	PeakRSSGrowth int64 `json:"peak_rss_growth"`
}

func (r Run) Failed() bool { return r.Error != "" }

type GraphInfo struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

type QueryInfo struct {
	Source    int      `json:"source"`
	Target    int      `json:"target"`
	Threshold *float64 `json:"threshold,omitempty"`
	MaxDepth  int      `json:"max_depth,omitempty"`
}

// Report collects every run of one benchmark.
type Report struct {
	ID       string    `json:"id"`
	Started  time.Time `json:"started"`
	Host     HostInfo  `json:"host"`
	Graph    GraphInfo `json:"graph"`
	Query    QueryInfo `json:"query"`
	Parallel bool      `json:"parallel"`
	Runs     []Run     `json:"runs"`
	// Agree is true when every completed strategy that answers the same
	// question returned the same path set.
	Agree bool `json:"agree"`
}

// Runner executes strategies. Logger, Metrics and Tracer are optional.
type Runner struct {
	Logger   *zap.SugaredLogger
	Metrics  *metrics.Metrics
	Tracer   trace.Tracer
	Parallel bool
	// SkipHost disables host probing.
	SkipHost bool
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer == nil {
		return telemetry.Tracer()
	}
	return r.Tracer
}

// Run times every strategy on g. Strategy failures, including panics, are
// recorded on their Run; only cancellation of ctx aborts the benchmark.
func (r *Runner) Run(ctx context.Context, g *graph.AttackGraph, q paths.Query, strategies []paths.Strategy) (*Report, error) {
	log := r.logger()
	report := &Report{
		ID:       uuid.NewString(),
		Started:  time.Now(),
		Graph:    GraphInfo{Nodes: g.NodeCount(), Edges: g.EdgeCount()},
		Query:    QueryInfo{Source: q.Source, Target: q.Target, Threshold: q.Threshold, MaxDepth: q.MaxDepth},
		Parallel: r.Parallel,
		Runs:     make([]Run, len(strategies)),
	}
	if !r.SkipHost {
		host, err := CollectHost(ctx)
		if err != nil {
			log.Debugw("host info incomplete", "err", err)
		}
		report.Host = host
	}
	if r.Metrics != nil {
		r.Metrics.ObserveGraph(report.Graph.Nodes, report.Graph.Edges)
	}

	ctx, span := r.tracer().Start(ctx, "pathrisk/bench",
		trace.WithAttributes(
			attribute.String("run.id", report.ID),
			attribute.Int("graph.nodes", report.Graph.Nodes),
			attribute.Int("graph.edges", report.Graph.Edges),
		))
	defer span.End()

	log.Infow("benchmark started", "id", report.ID, "nodes", report.Graph.Nodes, "edges", report.Graph.Edges,
		"source", q.Source, "target", q.Target, "strategies", len(strategies), "parallel", r.Parallel)

	if r.Parallel {
		var wg sync.WaitGroup
		for i, s := range strategies {
			wg.Add(1)
			go func(i int, s paths.Strategy) {
				defer wg.Done()
				report.Runs[i] = r.runOne(ctx, g, q, s)
			}(i, s)
		}
		wg.Wait()
	} else {
		for i, s := range strategies {
			if err := ctx.Err(); err != nil {
				break
			}
			report.Runs[i] = r.runOne(ctx, g, q, s)
		}
	}

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancelled")
		return nil, err
	}

	report.Agree = Agree(report.Runs, q.Threshold != nil)
	span.SetAttributes(attribute.Bool("agree", report.Agree))
	if !report.Agree {
		log.Warnw("strategies disagree on the path set", "id", report.ID)
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, g *graph.AttackGraph, q paths.Query, s paths.Strategy) Run {
	log := r.logger()
	run := Run{Strategy: s.Name(), FiltersByRisk: paths.FiltersByRisk(s)}

	ctx, span := r.tracer().Start(ctx, "pathrisk/bench."+s.Name(),
		trace.WithAttributes(
			attribute.String("strategy", s.Name()),
			attribute.Int("source", q.Source),
			attribute.Int("target", q.Target),
		))
	defer span.End()

	before := peakRSS()
	start := time.Now()
	results, err := safeRun(ctx, log, s, g, q)
	run.Elapsed = time.Since(start)
	if grown := peakRSS() - before; grown > 0 {
		run.PeakRSSGrowth = grown
	}

	if err != nil {
		run.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warnw("strategy failed", "strategy", s.Name(), "elapsed", run.Elapsed, "err", err)
	} else {
		run.Results = paths.Canonical(results)
		run.Count = len(results)
		span.SetAttributes(attribute.Int("paths", run.Count))
		log.Infow("strategy finished", "strategy", s.Name(), "elapsed", run.Elapsed, "paths", run.Count)
	}
	if r.Metrics != nil {
		r.Metrics.ObserveRun(s.Name(), run.Elapsed, run.Count, err)
	}
	return run
}

// safeRun calls s.Find and turns a panic into an error.
func safeRun(ctx context.Context, log *zap.SugaredLogger, s paths.Strategy, g *graph.AttackGraph, q paths.Query) (results []paths.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := string(debug.Stack())
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), rec)
			log.Errorw("strategy panic", "strategy", s.Name(), "panic", rec, "stack", stack)
			results = nil
		}
	}()
	return s.Find(ctx, g, q)
}

// Agree reports whether the completed runs that answer the same question
// found the same paths. Shortest-path runs answer a narrower question and
// are ignored. With a threshold, risk-filtering strategies are compared
// among themselves and the rest among themselves.
func Agree(runs []Run, thresholded bool) bool {
	groups := map[bool][]Run{}
	for _, run := range runs {
		if run.Strategy == "" || run.Failed() || run.Strategy == paths.NameShortest {
			continue
		}
		key := thresholded && run.FiltersByRisk
		groups[key] = append(groups[key], run)
	}
	for _, group := range groups {
		for _, run := range group[1:] {
			if !paths.SamePaths(group[0].Results, run.Results) {
				return false
			}
		}
	}
	return true
}

// Fastest returns the completed run with the smallest elapsed time.
func (rep *Report) Fastest() (Run, bool) {
	var (
		best  Run
		found bool
	)
	for _, run := range rep.Runs {
		if run.Failed() || run.Strategy == "" {
			continue
		}
		if !found || run.Elapsed < best.Elapsed {
			best, found = run, true
		}
	}
	return best, found
}
