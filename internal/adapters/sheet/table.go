// Package sheet provides the tabular report adapters: CSV and XLSX readers that expose a report
// as a ports.Sheet, and an XLSX writer for formatted output.
package sheet

import (
	"strings"

	"cryptoLedger/internal/domain"
)

// Table is an in-memory ports.Sheet. Reports are small, so files are read fully on open and
// re-opening the file restarts the sequence.
type Table struct {
	name   string
	header domain.RawRow
	rows   []domain.RawRow
}

// FromRecords builds a Table whose first record is the header row.
// Fully blank trailing records are dropped, as spreadsheet tools often leave them behind.
func FromRecords(name string, records [][]string) *Table {
	t := &Table{name: name}
	if len(records) == 0 {
		return t
	}
	t.header = domain.RawRow(records[0])
	end := len(records)
	for end > 1 && isBlank(records[end-1]) {
		end--
	}
	t.rows = make([]domain.RawRow, 0, end-1)
	for _, rec := range records[1:end] {
		t.rows = append(t.rows, domain.RawRow(rec))
	}
	return t
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Name returns the source name of the sheet, usually the file name.
func (t *Table) Name() string { return t.name }

// Header returns the header row.
func (t *Table) Header() domain.RawRow { return t.header }

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// Row returns data row i (0-based); out of range yields an empty row.
func (t *Table) Row(i int) domain.RawRow {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}
