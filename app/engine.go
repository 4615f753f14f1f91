// Package app wires the evolution engine and the cycle runner that drives it.
package app

import (
	"sort"
	"time"

	"evoloop/domain/core"
	"evoloop/domain/evolution"
	"evoloop/domain/metrics"
	"evoloop/ports"
)

// Engine runs the simulated self-improvement loop over one metric set. All
// state is in memory; the engine performs no I/O and is single-threaded.
// Callers that share an engine across goroutines must serialize access.
type Engine struct {
	generation int
	metrics    *metrics.Set
	catalog    *evolution.Catalog
	history    []evolution.ImprovementRecord
	rng        ports.RNG
	now        func() time.Time
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithCatalog overrides the built-in improvement-type catalog.
func WithCatalog(c *evolution.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithClock overrides the timestamp source used for history records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over a metric set with injected randomness.
// The set's construction-time scores are the run's baseline.
func NewEngine(set *metrics.Set, rng ports.RNG, opts ...Option) *Engine {
	e := &Engine{
		generation: 1,
		metrics:    set,
		catalog:    evolution.DefaultCatalog(),
		rng:        rng,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generation returns the current generation counter.
func (e *Engine) Generation() int { return e.generation }

// History returns a copy of the improvement history so far.
func (e *Engine) History() []evolution.ImprovementRecord {
	history := make([]evolution.ImprovementRecord, len(e.history))
	copy(history, e.history)
	return history
}

// Analyze computes, per metric, how far it sits from the score cap and the
// resulting improvement priority on a 0-1 scale. Pure read.
func (e *Engine) Analyze() evolution.Analysis {
	analysis := make(evolution.Analysis, e.metrics.Len())
	for _, name := range e.metrics.Names() {
		score, _ := e.metrics.Score(name)
		potential := metrics.MaxScore - score
		analysis[name] = evolution.MetricAnalysis{
			CurrentScore:         score,
			ImprovementPotential: potential,
			Priority:             potential / metrics.MaxScore,
		}
	}
	return analysis
}

// ProposeImprovements generates one candidate for every metric whose priority
// strictly exceeds the threshold. Per selected metric the draws happen in a
// fixed order (type choice, expected gain, risk level); reordering them
// breaks seeded reproducibility.
func (e *Engine) ProposeImprovements(analysis evolution.Analysis) map[string]evolution.Candidate {
	candidates := make(map[string]evolution.Candidate)
	for _, name := range e.metrics.Names() {
		a, ok := analysis[name]
		if !ok || a.Priority <= evolution.PriorityThreshold {
			continue
		}

		types := e.catalog.Types(name)
		improvementType := types[e.rng.IntN(len(types))]

		candidates[name] = evolution.Candidate{
			Metric:       name,
			Type:         improvementType,
			Description:  e.catalog.Describe(name, improvementType, e.generation+1),
			ExpectedGain: e.rng.Uniform(evolution.MinExpectedGain, evolution.MaxExpectedGain),
			RiskLevel:    e.rng.Uniform(evolution.MinRiskLevel, evolution.MaxRiskLevel),
		}
	}
	return candidates
}

// TestImprovements simulates a validation run per candidate. Draw order per
// candidate is fixed: gain scale, pass draw, stability draw, then the three
// diagnostic draws.
//
// The realized gain depends on the pass draw alone. A candidate that passes
// but fails the stability draw keeps its measured gain while Success stays
// false; the gain is never applied, but it remains visible on the result.
func (e *Engine) TestImprovements(candidates map[string]evolution.Candidate) map[string]evolution.TestResult {
	results := make(map[string]evolution.TestResult, len(candidates))
	for _, name := range sortedKeys(candidates) {
		cand := candidates[name]

		gain := cand.ExpectedGain * e.rng.Uniform(evolution.MinGainScale, evolution.MaxGainScale)
		passed := e.rng.Float64() < evolution.SuccessProbability
		stable := e.rng.Float64() > cand.RiskLevel
		if !passed {
			gain = 0
		}

		results[name] = evolution.TestResult{
			Metric:          name,
			Success:         passed && stable,
			PerformanceGain: gain,
			Stable:          stable,
			Diagnostics: evolution.TestDiagnostics{
				ExecutionTime: e.rng.Uniform(0.1, 2.0),
				MemoryUsage:   e.rng.Uniform(0.5, 1.5),
				ErrorRate:     e.rng.Uniform(0, 0.1),
			},
		}
	}
	return results
}

// ApplyImprovements folds every successful result into the current scores,
// clamping at the score cap, and appends a history record per applied gain.
// Unsuccessful results leave their metric untouched; nothing was tentatively
// applied, so there is no rollback. Returns the count applied.
func (e *Engine) ApplyImprovements(results map[string]evolution.TestResult) int {
	applied := 0
	for _, name := range sortedKeys(results) {
		res := results[name]
		if !res.Success {
			continue
		}

		old, updated, err := e.metrics.Apply(name, res.PerformanceGain)
		if err != nil {
			// result for a metric this set does not track
			continue
		}

		e.history = append(e.history, evolution.ImprovementRecord{
			Generation:  e.generation,
			Metric:      name,
			OldValue:    old,
			NewValue:    updated,
			Improvement: updated - old,
			Timestamp:   core.NewTimestamp(e.now()),
		})
		applied++
	}
	return applied
}

// EvolveGeneration runs one full analyze-propose-test-apply cycle and then
// advances the generation counter. The returned summary describes the
// generation just completed. No partial application is visible to callers:
// the engine is single-threaded and the steps run to completion in order.
func (e *Engine) EvolveGeneration() evolution.CycleSummary {
	analysis := e.Analyze()
	candidates := e.ProposeImprovements(analysis)
	results := e.TestImprovements(candidates)
	successful := e.ApplyImprovements(results)

	summary := evolution.CycleSummary{
		Generation:           e.generation,
		Analysis:             analysis,
		Attempted:            len(candidates),
		Successful:           successful,
		Metrics:              e.metrics.Current(),
		ProgressFromBaseline: e.metrics.Delta(),
	}
	e.generation++
	return summary
}

// Report returns the full run state. Pure read: consecutive calls without an
// intervening cycle return identical values.
func (e *Engine) Report() evolution.Report {
	return evolution.Report{
		CurrentGeneration:   e.generation,
		BaselinePerformance: e.metrics.Baseline(),
		CurrentPerformance:  e.metrics.Current(),
		TotalImprovements:   len(e.history),
		ImprovementHistory:  e.History(),
		OverallProgress:     e.metrics.Delta(),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
