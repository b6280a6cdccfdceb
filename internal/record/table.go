package record

import (
	"fmt"
	"strings"
)

// Table is the parsed document: an optional header row and the data rows.
// Every row has exactly ColumnCount cells. A Table is never mutated after
// construction; Slice shares the underlying rows.
type Table struct {
	header  Row
	rows    []Row
	cols    int
	rowBase int // data-row index of rows[0] in the source document
}

// NewTable builds a Table. Rows that do not have exactly cols cells are padded
// or truncated so that the table is never jagged.
func NewTable(header Row, rows []Row, cols int) *Table {
	if cols < 0 {
		cols = 0
	}
	if header != nil {
		header = fitRow(header, cols)
	}
	for i, r := range rows {
		if len(r) != cols {
			rows[i] = fitRow(r, cols)
		}
	}
	return &Table{header: header, rows: rows, cols: cols}
}

// Empty returns a table with no rows and no columns.
func Empty() *Table {
	return &Table{}
}

func fitRow(r Row, cols int) Row {
	if len(r) == cols {
		return r
	}
	out := make(Row, cols)
	copy(out, r)
	return out
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// ColumnCount returns the number of columns shared by every row.
func (t *Table) ColumnCount() int {
	if t == nil {
		return 0
	}
	return t.cols
}

// HasHeader reports whether the table has a header row.
func (t *Table) HasHeader() bool { return t != nil && t.header != nil }

// Header returns the header row, or nil.
func (t *Table) Header() Row {
	if t == nil {
		return nil
	}
	return t.header
}

// Row returns data row i. It panics if i is out of range, like a slice index.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Cell returns the cell at (row, col), or the zero Cell when out of range.
func (t *Table) Cell(row, col int) Cell {
	if t == nil || row < 0 || row >= len(t.rows) || col < 0 || col >= t.cols {
		return Cell{}
	}
	return t.rows[row][col]
}

// RowNumber returns the 1-based number of data row i in the source document.
func (t *Table) RowNumber(i int) int {
	if t == nil {
		return i + 1
	}
	return t.rowBase + i + 1
}

// ColumnName returns the header text for column c, or a spreadsheet-style
// letter name (A, B, ..., Z, AA, ...) when the header is absent or blank.
func (t *Table) ColumnName(c int) string {
	if t != nil && t.header != nil && c >= 0 && c < len(t.header) {
		if v := t.header[c].Display(); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ColumnLetters(c)
}

// ColumnLetters converts a 0-based column index into spreadsheet letters.
func ColumnLetters(c int) string {
	if c < 0 {
		return ""
	}
	var buf []byte
	for n := c + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

// Slice returns a table holding data rows [start, end). The header and column
// count are shared; row numbers keep referring to the source document.
func (t *Table) Slice(start, end int) *Table {
	n := t.RowCount()
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	if t == nil {
		return Empty()
	}
	return &Table{
		header:  t.header,
		rows:    t.rows[start:end:end],
		cols:    t.cols,
		rowBase: t.rowBase + start,
	}
}

// String returns a short description for debugging.
func (t *Table) String() string {
	return fmt.Sprintf("Table[rows=%d, cols=%d, header=%t]", t.RowCount(), t.ColumnCount(), t.HasHeader())
}
