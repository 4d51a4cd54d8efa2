package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"cryptoLedger/internal/ports"
)

const utf8BOM = "\ufeff"

// Reader opens .csv and .xlsx reports. It implements ports.SheetReader.
type Reader struct{}

// NewReader creates a report reader.
func NewReader() *Reader {
	return &Reader{}
}

// Supports reports whether the file extension is one the reader understands.
func (r *Reader) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Open reads the whole report into memory.
func (r *Reader) Open(ctx context.Context, path string) (ports.Sheet, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported report extension %q: %w", filepath.Ext(path), ports.ErrSheetIO)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report '%s': %v: %w", path, err, ports.ErrSheetIO)
	}
	return FromRecords(filepath.Base(path), records), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return records, nil
}

// readXLSX reads the workbook's active sheet, the one the exchange export opens on.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		return nil, fmt.Errorf("workbook has no active sheet")
	}
	return f.GetRows(name)
}
