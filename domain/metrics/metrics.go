// Package metrics tracks the named performance scores the engine evolves.
package metrics

import (
	"sort"

	"evoloop/domain/core"
)

// MaxScore caps every metric; updates clamp at this bound.
const MaxScore = 100.0

// DefaultScores returns the built-in starting scores.
func DefaultScores() map[string]float64 {
	return map[string]float64{
		"algorithm_efficiency": 45.0,
		"self_awareness_level": 20.0,
		"improvement_accuracy": 30.0,
		"code_quality":         40.0,
		"learning_speed":       35.0,
	}
}

// Set holds the baseline and current score for a fixed collection of metrics.
// The baseline is captured at construction and never changes; the current
// scores move as improvements are applied. Name order is fixed (sorted
// ascending) so iteration over a Set is reproducible.
type Set struct {
	names    []string
	baseline map[string]float64
	current  map[string]float64
}

// New builds a Set from initial scores, which become both baseline and
// current. Errors on an empty input or on any score outside [0, MaxScore].
func New(initial map[string]float64) (*Set, error) {
	if len(initial) == 0 {
		return nil, core.ErrEmptyMetricSet
	}

	s := &Set{
		names:    make([]string, 0, len(initial)),
		baseline: make(map[string]float64, len(initial)),
		current:  make(map[string]float64, len(initial)),
	}
	for name, score := range initial {
		if score < 0 || score > MaxScore {
			return nil, core.NewScoreRangeError(name, score)
		}
		s.names = append(s.names, name)
		s.baseline[name] = score
		s.current[name] = score
	}
	sort.Strings(s.names)

	return s, nil
}

// Default builds a Set with the built-in starting scores.
func Default() *Set {
	s, err := New(DefaultScores())
	if err != nil {
		// DefaultScores is a fixed valid table
		panic(err)
	}
	return s
}

// Names returns the metric names in their fixed sorted order.
func (s *Set) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Len returns the number of tracked metrics.
func (s *Set) Len() int { return len(s.names) }

// Score returns the current score for a metric.
func (s *Set) Score(name string) (float64, bool) {
	score, ok := s.current[name]
	return score, ok
}

// Apply adds gain to a metric's current score, clamping at MaxScore, and
// returns the old and new values. There is no lower clamp: gains are
// non-negative in the current model, and the update path leaves the
// zero-bound decision to whoever introduces negative gains.
func (s *Set) Apply(name string, gain float64) (old, updated float64, err error) {
	old, ok := s.current[name]
	if !ok {
		return 0, 0, core.NewMetricNotFoundError(name)
	}
	updated = old + gain
	if updated > MaxScore {
		updated = MaxScore
	}
	s.current[name] = updated
	return old, updated, nil
}

// Baseline returns a copy of the construction-time scores.
func (s *Set) Baseline() map[string]float64 {
	return copyScores(s.baseline)
}

// Current returns a copy of the present scores.
func (s *Set) Current() map[string]float64 {
	return copyScores(s.current)
}

// Delta returns current minus baseline per metric.
func (s *Set) Delta() map[string]float64 {
	delta := make(map[string]float64, len(s.names))
	for _, name := range s.names {
		delta[name] = s.current[name] - s.baseline[name]
	}
	return delta
}

func copyScores(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for name, score := range src {
		dst[name] = score
	}
	return dst
}
