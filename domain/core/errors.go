package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrEmptyMetricSet  = errors.New("metric set is empty")
	ErrScoreOutOfRange = errors.New("metric score outside [0, 100]")

	// Lookup errors
	ErrMetricNotFound = errors.New("metric not found")
)

// NewScoreRangeError reports an initial score that falls outside [0, 100]
func NewScoreRangeError(metric string, score float64) error {
	return fmt.Errorf("%w: %s = %.2f", ErrScoreOutOfRange, metric, score)
}

// NewMetricNotFoundError reports an operation against an untracked metric
func NewMetricNotFoundError(metric string) error {
	return fmt.Errorf("%w: %s", ErrMetricNotFound, metric)
}
