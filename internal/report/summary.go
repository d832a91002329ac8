package report

import (
	"fmt"
	"io"

	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Setup summary"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var summaryHeader = []interface{}{"Section", "Item", "Value"}

// WriteSummary writes the setup summary of form as a single-sheet XLSX workbook.
func WriteSummary(w io.Writer, form wizard.FormData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "C1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, line := range wizard.SummaryLines(form) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{line.Section, line.Label, line.Value}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "B", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "C", "C", 60); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadSummary parses a workbook produced by WriteSummary back into rows.
func ReadSummary(r io.Reader) ([]wizard.SummaryLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var lines []wizard.SummaryLine
	for i, row := range rows {
		if i == 0 {
			continue
		}
		// trailing empty cells are dropped by GetRows
		for len(row) < 3 {
			row = append(row, "")
		}
		lines = append(lines, wizard.SummaryLine{Section: row[0], Label: row[1], Value: row[2]})
	}
	return lines, nil
}
