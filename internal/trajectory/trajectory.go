// Package trajectory summarizes the gain distributions an evolution run (or a
// batch of independent runs) produces.
package trajectory

import (
	"github.com/montanaflynn/stats"

	"evoloop/domain/evolution"
)

// Summary describes the distribution of a series of values.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Over computes summary statistics for raw values. Errors on empty input.
func Over(values []float64) (Summary, error) {
	data := stats.Float64Data(values)

	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return Summary{}, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return Summary{}, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
	}, nil
}

// Summarize computes gain statistics over an improvement history.
func Summarize(history []evolution.ImprovementRecord) (Summary, error) {
	gains := make([]float64, len(history))
	for i, rec := range history {
		gains[i] = rec.Improvement
	}
	return Over(gains)
}

// AggregateDeltas merges final per-metric baseline deltas across independent
// runs. Each map in runs is one run's metric name to delta mapping; the result
// summarizes every metric that appears in at least one run.
func AggregateDeltas(runs []map[string]float64) (map[string]Summary, error) {
	byMetric := make(map[string][]float64)
	for _, deltas := range runs {
		for name, delta := range deltas {
			byMetric[name] = append(byMetric[name], delta)
		}
	}

	result := make(map[string]Summary, len(byMetric))
	for name, values := range byMetric {
		summary, err := Over(values)
		if err != nil {
			return nil, err
		}
		result[name] = summary
	}
	return result, nil
}
