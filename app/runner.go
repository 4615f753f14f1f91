package app

import (
	"context"
	"log"
	"sort"
	"time"

	"evoloop/domain/core"
	"evoloop/domain/evolution"
	"evoloop/internal/errors"
	"evoloop/ports"
)

// RunnerConfig bounds one run of the driving loop.
type RunnerConfig struct {
	// Cycles is the number of generations to evolve.
	Cycles int
	// Delay is an optional pause between cycles, for human-observable
	// pacing only. It never applies after the final cycle.
	Delay time.Duration
}

// Runner drives one engine through a fixed number of generations, mirrors new
// history records into a ledger and persists the final report. Pacing and
// persistence live here, at the orchestration boundary; the engine itself
// stays free of I/O.
type Runner struct {
	engine *Engine
	cfg    RunnerConfig
	runID  core.RunID
	ledger ports.Ledger
	store  ports.ReportStore
	logf   func(format string, args ...any)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLedger mirrors each cycle's new history records into a ledger.
func WithLedger(l ports.Ledger) RunnerOption {
	return func(r *Runner) { r.ledger = l }
}

// WithReportStore persists the final report after the last cycle.
func WithReportStore(s ports.ReportStore) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id core.RunID) RunnerOption {
	return func(r *Runner) { r.runID = id }
}

// NewRunner creates a runner around an engine.
func NewRunner(engine *Engine, cfg RunnerConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine: engine,
		cfg:    cfg,
		runID:  core.NewRunID(),
		logf:   log.Printf,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunResult is what one completed run hands back to the caller.
type RunResult struct {
	RunID      core.RunID
	Summaries  []evolution.CycleSummary
	Report     evolution.Report
	ReportPath string
}

// Run evolves the configured number of generations. Engine cycles cannot
// fail; the only error sources are the persistence boundary and context
// cancellation during an inter-cycle delay.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	summaries := make([]evolution.CycleSummary, 0, r.cfg.Cycles)

	for i := 0; i < r.cfg.Cycles; i++ {
		recorded := len(r.engine.History())
		summary := r.engine.EvolveGeneration()
		summaries = append(summaries, summary)
		r.printSummary(summary)

		if r.ledger != nil {
			for _, rec := range r.engine.History()[recorded:] {
				if err := r.ledger.StoreRecord(ctx, r.runID, rec); err != nil {
					return nil, errors.Wrapf(err, "failed to store history record for generation %d", summary.Generation)
				}
			}
		}

		if r.cfg.Delay > 0 && i < r.cfg.Cycles-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.cfg.Delay):
			}
		}
	}

	result := &RunResult{
		RunID:     r.runID,
		Summaries: summaries,
		Report:    r.engine.Report(),
	}
	if r.store != nil {
		path, err := r.store.Save(ctx, result.Report)
		if err != nil {
			return nil, errors.Wrap(err, "failed to persist evolution report")
		}
		result.ReportPath = path
	}
	return result, nil
}

func (r *Runner) printSummary(s evolution.CycleSummary) {
	r.logf("generation %d: attempted=%d successful=%d", s.Generation, s.Attempted, s.Successful)

	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.logf("  %s: %.1f (%+.1f from baseline)", name, s.Metrics[name], s.ProgressFromBaseline[name])
	}
}
