package progress

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Progress"

// WriteReport writes an xlsx workbook with one row per subject. Columns:
// subject name, completed topics, total topics, percent.
func WriteReport(w io.Writer, summaries []SubjectProgress) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("name report sheet: %w", err)
	}

	header := []any{"Subject", "Completed", "Total", "Percent"}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []any{s.Name, s.Completed, s.Total, s.Percent}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", row, err)
		}
		if err := f.SetCellValue(reportSheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
