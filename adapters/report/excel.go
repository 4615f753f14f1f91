package report

import (
	"time"

	"github.com/xuri/excelize/v2"

	"evoloop/domain/evolution"
	"evoloop/internal/errors"
)

const historySheet = "History"

// ExportExcel writes the improvement history to an .xlsx workbook, one row
// per history record.
func ExportExcel(rep evolution.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return errors.ReportIO("failed to name history sheet", err)
	}

	headers := []string{"Generation", "Metric", "Old Value", "New Value", "Improvement", "Timestamp"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.ReportIO("failed to address header cell", err)
		}
		if err := f.SetCellValue(historySheet, cell, header); err != nil {
			return errors.ReportIO("failed to write header cell", err)
		}
	}

	for row, rec := range rep.ImprovementHistory {
		values := []interface{}{
			rec.Generation,
			rec.Metric,
			rec.OldValue,
			rec.NewValue,
			rec.Improvement,
			rec.Timestamp.Time().Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return errors.ReportIO("failed to address history cell", err)
			}
			if err := f.SetCellValue(historySheet, cell, value); err != nil {
				return errors.ReportIO("failed to write history cell", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ReportIO("failed to write excel export", err)
	}
	return nil
}
