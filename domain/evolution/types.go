// Package evolution defines the artifacts of the simulated self-improvement
// loop: candidates, test results, history records and reports.
package evolution

import (
	"evoloop/domain/core"
)

// Candidate is a proposed, not-yet-validated improvement for one metric in
// one cycle. Description is inert illustrative text, never executed.
type Candidate struct {
	Metric       string  `json:"metric"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	ExpectedGain float64 `json:"expected_gain"`
	RiskLevel    float64 `json:"risk_level"`
}

// TestDiagnostics carries per-test measurements. The values are cosmetic;
// nothing downstream consumes them beyond report inspection.
type TestDiagnostics struct {
	ExecutionTime float64 `json:"execution_time"`
	MemoryUsage   float64 `json:"memory_usage"`
	ErrorRate     float64 `json:"error_rate"`
}

// TestResult records the simulated validation of one candidate.
//
// PerformanceGain is set whenever the pass draw succeeds, independent of the
// stability draw that also gates Success. A passed-but-unstable result
// therefore carries a positive gain with Success=false; the gain is never
// applied but stays observable on the struct.
type TestResult struct {
	Metric          string          `json:"metric"`
	Success         bool            `json:"success"`
	PerformanceGain float64         `json:"performance_gain"`
	Stable          bool            `json:"stability"`
	Diagnostics     TestDiagnostics `json:"test_details"`
}

// ImprovementRecord is one element of the append-only improvement history.
type ImprovementRecord struct {
	Generation  int            `json:"generation"`
	Metric      string         `json:"metric"`
	OldValue    float64        `json:"old_value"`
	NewValue    float64        `json:"new_value"`
	Improvement float64        `json:"improvement"`
	Timestamp   core.Timestamp `json:"timestamp"`
}

// MetricAnalysis is the per-metric output of the analysis step.
type MetricAnalysis struct {
	CurrentScore         float64 `json:"current_score"`
	ImprovementPotential float64 `json:"improvement_potential"`
	Priority             float64 `json:"priority"`
}

// Analysis maps metric name to its analysis for one cycle.
type Analysis map[string]MetricAnalysis

// CycleSummary describes one completed generation.
type CycleSummary struct {
	Generation           int                `json:"generation"`
	Analysis             Analysis           `json:"analysis"`
	Attempted            int                `json:"improvements_attempted"`
	Successful           int                `json:"improvements_successful"`
	Metrics              map[string]float64 `json:"performance_metrics"`
	ProgressFromBaseline map[string]float64 `json:"total_improvement_from_baseline"`
}

// Report is the full state of an evolution run. Field names match the
// persisted artifact shape so saved reports round-trip.
type Report struct {
	CurrentGeneration   int                 `json:"current_generation"`
	BaselinePerformance map[string]float64  `json:"baseline_performance"`
	CurrentPerformance  map[string]float64  `json:"current_performance"`
	TotalImprovements   int                 `json:"total_improvements"`
	ImprovementHistory  []ImprovementRecord `json:"improvement_history"`
	OverallProgress     map[string]float64  `json:"overall_progress"`
}
