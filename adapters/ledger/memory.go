package ledger

import (
	"context"
	"sync"

	"evoloop/domain/core"
	"evoloop/domain/evolution"
)

// MemoryLedger keeps history records in memory, per run, in insertion order.
// Used by tests and by the API demo path where no database is configured.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[core.RunID][]evolution.ImprovementRecord
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *MemoryLedger {
	return &MemoryLedger{
		records: make(map[core.RunID][]evolution.ImprovementRecord),
	}
}

// StoreRecord appends one history record for a run.
func (m *MemoryLedger) StoreRecord(ctx context.Context, runID core.RunID, rec evolution.ImprovementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[runID] = append(m.records[runID], rec)
	return nil
}

// ListRecords returns a copy of a run's records in insertion order.
func (m *MemoryLedger) ListRecords(ctx context.Context, runID core.RunID) ([]evolution.ImprovementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]evolution.ImprovementRecord, len(m.records[runID]))
	copy(records, m.records[runID])
	return records, nil
}

// Close is a no-op for the in-memory ledger.
func (m *MemoryLedger) Close() error { return nil }
