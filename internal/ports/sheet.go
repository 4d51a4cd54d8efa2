package ports

import (
	"context"

	"cryptoLedger/internal/domain"
)

// Sheet is a read-only tabular report: one header row followed by data rows.
// Row indices are 0-based over the data rows, so Row(0) is spreadsheet row 2.
type Sheet interface {
	Name() string
	Header() domain.RawRow
	NumRows() int
	Row(i int) domain.RawRow
}

// SheetReader opens report files as sheets.
type SheetReader interface {
	Open(ctx context.Context, path string) (Sheet, error)
	// Supports reports whether the file extension can be read.
	Supports(path string) bool
}
