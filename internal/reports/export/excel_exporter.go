package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	SheetName    string
	FreezeHeader bool
	NumberFormat string
	HeaderFill   string
	HeaderFont   string
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:    "Cap Table",
		FreezeHeader: true,
		NumberFormat: "0.00",
		HeaderFill:   "4472C4",
		HeaderFont:   "FFFFFF",
	}
}

// WriteExcel writes the report to a single-sheet workbook.
func WriteExcel(w io.Writer, r *Report, options ExcelOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := options.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: options.HeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{options.HeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &options.NumberFormat})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create summary style: %w", err)
	}

	widths := make([]float64, len(r.Columns))
	for i, col := range r.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		widths[i] = float64(len(col))
	}
	if len(r.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(r.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for rowIdx, row := range r.Rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			switch val.(type) {
			case float64, float32:
				if err := f.SetCellStyle(sheet, cell, cell, numberStyle); err != nil {
					return fmt.Errorf("failed to style cell %s: %w", cell, err)
				}
			}
			if colIdx < len(widths) {
				if width := float64(len(fmt.Sprintf("%v", val))); width > widths[colIdx] {
					widths[colIdx] = width
				}
			}
		}
	}

	summaryRow := len(r.Rows) + 3
	for i, line := range r.Summary {
		label, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		value, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		_ = f.SetCellValue(sheet, label, line[0])
		_ = f.SetCellValue(sheet, value, line[1])
		_ = f.SetCellStyle(sheet, label, label, boldStyle)
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width = width*1.2 + 2
		if width < 10 {
			width = 10
		}
		if width > 50 {
			width = 50
		}
		_ = f.SetColWidth(sheet, col, col, width)
	}

	if options.FreezeHeader {
		_ = f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
