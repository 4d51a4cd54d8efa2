package domain

import "strings"

// RawRow is one row of an exchange's native export. Column semantics depend on the report kind.
type RawRow []string

// Cell returns the trimmed value at the 0-based column index, or "" when the row is shorter.
func (r RawRow) Cell(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Spreadsheet column indices used by the report layouts.
const (
	ColA = iota
	ColB
	ColC
	ColD
	ColE
	ColF
	ColG
	ColH
)
