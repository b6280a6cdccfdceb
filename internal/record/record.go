// Package record holds the immutable in-memory representation of a parsed
// CSV document: cells, rows and the table that owns them.
package record

import (
	"strings"
	"unicode"

	runewidth "github.com/mattn/go-runewidth"
)

// Cell is a single field value. Its display width is computed once, at
// construction, from the single-line display form of the value.
type Cell struct {
	value string
	width int
}

// NewCell builds a Cell and caches its display width.
func NewCell(value string) Cell {
	return Cell{value: value, width: runewidth.StringWidth(displayText(value))}
}

// Value returns the semantic (unmodified) field value.
func (c Cell) Value() string { return c.value }

// Width returns the cached display width of Display().
func (c Cell) Width() int { return c.width }

// Display returns the value with control characters replaced by visible,
// single-width substitutes so that a cell never spans more than one line.
func (c Cell) Display() string { return displayText(c.value) }

func displayText(s string) string {
	if !needsSubstitution(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune('↵')
		case r == '\t':
			b.WriteRune(' ')
		case r == '\r':
			// dropped
		case unicode.IsControl(r):
			b.WriteRune('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func needsSubstitution(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7f {
			return true
		}
	}
	for _, r := range s {
		if r >= 0x80 && unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// Row is an ordered, fixed-length sequence of cells.
type Row []Cell

// Len returns the number of cells in the row.
func (r Row) Len() int { return len(r) }

// Values returns the semantic values of the row.
func (r Row) Values() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.value
	}
	return out
}

// NewRow builds a row of exactly width cells from values, padding with empty
// cells or dropping extra values as needed.
func NewRow(values []string, width int) Row {
	row := make(Row, width)
	for i := 0; i < width; i++ {
		if i < len(values) {
			row[i] = NewCell(values[i])
		}
	}
	return row
}
