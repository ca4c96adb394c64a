package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the extracted table.
const SheetName = "Data"

// XLSX writes the table to a workbook: row 1 holds the annotation, row 2 the
// labels, and every following row one record. Cells are strings so values
// keep the simulator's text form.
type XLSX struct{}

func (XLSX) Write(t *waveform.Table, path string) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to create stream writer: %w", err)
	}

	if err := sw.SetRow("A1", []interface{}{strings.TrimSuffix(t.Annotation, "\n")}); err != nil {
		return 0, fmt.Errorf("failed to write annotation: %w", err)
	}
	if err := sw.SetRow("A2", toCells(t.Labels)); err != nil {
		return 0, fmt.Errorf("failed to write labels: %w", err)
	}
	for i, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush sheet: %w", err)
	}

	return atomicWrite(path, func(out *os.File) error {
		if _, err := f.WriteTo(out); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		return nil
	})
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
