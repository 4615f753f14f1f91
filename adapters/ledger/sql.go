// Package ledger persists improvement history records.
package ledger

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"evoloop/domain/core"
	"evoloop/domain/evolution"
	"evoloop/internal/errors"
)

// SQLLedger stores history records through database/sql. Supported drivers
// are "sqlite3" and "postgres"; queries are written with ? placeholders and
// rebound per driver.
type SQLLedger struct {
	db *sqlx.DB
}

func schemaFor(driver string) string {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	return `CREATE TABLE IF NOT EXISTS improvement_records (
		` + idColumn + `,
		run_id TEXT NOT NULL,
		generation INTEGER NOT NULL,
		metric TEXT NOT NULL,
		old_value DOUBLE PRECISION NOT NULL,
		new_value DOUBLE PRECISION NOT NULL,
		improvement DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	)`
}

// Open connects with the given driver and DSN and ensures the history table
// exists. The returned ledger must be closed by the caller.
func Open(driver, dsn string) (*SQLLedger, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to open history ledger", err)
	}
	if _, err := db.Exec(schemaFor(driver)); err != nil {
		db.Close()
		return nil, errors.DatabaseError("failed to ensure ledger schema", err)
	}
	return &SQLLedger{db: db}, nil
}

// StoreRecord appends one history record for a run.
func (l *SQLLedger) StoreRecord(ctx context.Context, runID core.RunID, rec evolution.ImprovementRecord) error {
	query := l.db.Rebind(`INSERT INTO improvement_records
		(run_id, generation, metric, old_value, new_value, improvement, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := l.db.ExecContext(ctx, query,
		runID.String(), rec.Generation, rec.Metric,
		rec.OldValue, rec.NewValue, rec.Improvement, rec.Timestamp.Time().UTC())
	if err != nil {
		return errors.Wrapf(err, "failed to store history record for metric %s", rec.Metric)
	}
	return nil
}

// ListRecords returns a run's records in insertion order. An unknown run
// yields an empty slice, not an error.
func (l *SQLLedger) ListRecords(ctx context.Context, runID core.RunID) ([]evolution.ImprovementRecord, error) {
	query := l.db.Rebind(`SELECT generation, metric, old_value, new_value, improvement, recorded_at
		FROM improvement_records WHERE run_id = ? ORDER BY id`)
	rows, err := l.db.QueryContext(ctx, query, runID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list history records")
	}
	defer rows.Close()

	var records []evolution.ImprovementRecord
	for rows.Next() {
		var rec evolution.ImprovementRecord
		var recordedAt time.Time
		if err := rows.Scan(&rec.Generation, &rec.Metric, &rec.OldValue, &rec.NewValue, &rec.Improvement, &recordedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan history record")
		}
		rec.Timestamp = core.NewTimestamp(recordedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read history records")
	}
	return records, nil
}

// Close releases the underlying database handle.
func (l *SQLLedger) Close() error {
	return l.db.Close()
}
