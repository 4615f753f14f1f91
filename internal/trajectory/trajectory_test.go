package trajectory

import (
	"math"
	"testing"

	"evoloop/domain/core"
	"evoloop/domain/evolution"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestOver(t *testing.T) {
	summary, err := Over([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Count != 4 {
		t.Errorf("expected count 4, got %d", summary.Count)
	}
	if !almostEqual(summary.Mean, 2.5) {
		t.Errorf("expected mean 2.5, got %v", summary.Mean)
	}
	if !almostEqual(summary.Median, 2.5) {
		t.Errorf("expected median 2.5, got %v", summary.Median)
	}
	if summary.Min != 1 || summary.Max != 4 {
		t.Errorf("expected min 1 max 4, got %v/%v", summary.Min, summary.Max)
	}
	// Population standard deviation of {1,2,3,4}.
	if !almostEqual(summary.StdDev, math.Sqrt(1.25)) {
		t.Errorf("unexpected stddev %v", summary.StdDev)
	}
}

func TestOverEmpty(t *testing.T) {
	if _, err := Over(nil); err == nil {
		t.Error("expected error on empty input")
	}
}

func TestSummarize(t *testing.T) {
	history := []evolution.ImprovementRecord{
		{Generation: 1, Metric: "code_quality", Improvement: 4.0, Timestamp: core.Now()},
		{Generation: 2, Metric: "learning_speed", Improvement: 8.0, Timestamp: core.Now()},
	}

	summary, err := Summarize(history)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Count != 2 {
		t.Errorf("expected count 2, got %d", summary.Count)
	}
	if !almostEqual(summary.Mean, 6.0) {
		t.Errorf("expected mean gain 6.0, got %v", summary.Mean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); err == nil {
		t.Error("expected error on empty history")
	}
}

func TestAggregateDeltas(t *testing.T) {
	runs := []map[string]float64{
		{"code_quality": 10, "learning_speed": 4},
		{"code_quality": 20},
	}

	got, err := AggregateDeltas(runs)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(got))
	}

	quality := got["code_quality"]
	if quality.Count != 2 || !almostEqual(quality.Mean, 15.0) {
		t.Errorf("unexpected code_quality summary %+v", quality)
	}
	speed := got["learning_speed"]
	if speed.Count != 1 || !almostEqual(speed.Mean, 4.0) {
		t.Errorf("unexpected learning_speed summary %+v", speed)
	}
}

func TestAggregateDeltasEmpty(t *testing.T) {
	got, err := AggregateDeltas(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
}
