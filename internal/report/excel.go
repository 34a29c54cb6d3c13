package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/lotscout/hibid-scanner/internal/models"
)

const sheetName = "Sheet1"

var (
	columns      = []string{"Item Title", "Ebay Price", "Yahoo Price", "Weighted Average Price"}
	columnWidths = []float64{80, 25, 25, 25}
)

// ExcelWriter renders the ranked report as a styled xlsx sheet: bold header,
// centered cells, a wide title column. Absent prices stay as empty cells.
type ExcelWriter struct{}

func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

func (w *ExcelWriter) Ext() string {
	return "xlsx"
}

func (w *ExcelWriter) Write(path string, records []models.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to build cell style: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to build header style: %w", err)
	}

	for i, name := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for idx, record := range records {
		row := idx + 2
		values := []interface{}{
			record.Title,
			cellValue(record.Ebay),
			cellValue(record.Yahoo),
			cellValue(record.Estimate),
		}

		for col, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	lastCell, err := excelize.CoordinatesToCellName(len(columns), len(records)+1)
	if err != nil {
		return fmt.Errorf("failed to address sheet range: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCell, centered); err != nil {
		return fmt.Errorf("failed to style sheet: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "D1", header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
