package ports

import (
	"context"

	"evoloop/domain/core"
	"evoloop/domain/evolution"
)

// Ledger persists improvement history records. Implementations must preserve
// insertion order per run; the history is append-only.
type Ledger interface {
	// StoreRecord appends one history record for a run
	StoreRecord(ctx context.Context, runID core.RunID, rec evolution.ImprovementRecord) error

	// ListRecords returns a run's records in insertion order
	ListRecords(ctx context.Context, runID core.RunID) ([]evolution.ImprovementRecord, error)

	// Close releases any underlying resources
	Close() error
}
