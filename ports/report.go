package ports

import (
	"context"

	"evoloop/domain/evolution"
)

// ReportStore persists a final evolution report and returns where it landed.
type ReportStore interface {
	Save(ctx context.Context, report evolution.Report) (string, error)
}
