package sheet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"cryptoLedger/internal/ports"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes a single-sheet workbook: header in row 1, then one row per record.
func WriteXLSX(path, sheetName string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %v: %w", path, err, ports.ErrSheetIO)
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheetName != "" && sheetName != defaultSheet {
		f.SetSheetName(defaultSheet, sheetName)
	} else {
		sheetName = defaultSheet
	}

	if err := writeRow(f, sheetName, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		if err := writeRow(f, sheetName, i+2, rec); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook '%s': %v: %w", path, err, ports.ErrSheetIO)
	}
	return nil
}

func writeRow(f *excelize.File, sheetName string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", rowNum, err)
	}
	// Cells are written as text so quantities keep their exact decimal rendering.
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %v: %w", rowNum, err, ports.ErrSheetIO)
	}
	return nil
}
