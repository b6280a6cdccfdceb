package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCell_CachesDisplayWidth(t *testing.T) {
	tests := []struct {
		name  string
		value string
		width int
	}{
		{"ascii", "hello", 5},
		{"empty", "", 0},
		{"wide cjk", "日本語", 6},
		{"newline substituted", "a\nb", 3},
		{"crlf collapses", "a\r\nb", 3},
		{"tab becomes space", "a\tb", 3},
		{"combining accent", "é", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCell(tt.value)
			assert.Equal(t, tt.value, c.Value())
			assert.Equal(t, tt.width, c.Width())
		})
	}
}

func TestCell_DisplayIsSingleLine(t *testing.T) {
	c := NewCell("line one\nline two\x01")
	assert.Equal(t, "line one↵line two?", c.Display())
	assert.NotContains(t, c.Display(), "\n")
}

func TestNewRow_PadsAndTruncates(t *testing.T) {
	short := NewRow([]string{"a"}, 3)
	require.Len(t, short, 3)
	assert.Equal(t, []string{"a", "", ""}, short.Values())

	long := NewRow([]string{"a", "b", "c", "d"}, 2)
	assert.Equal(t, []string{"a", "b"}, long.Values())
}

func TestNewTable_NeverJagged(t *testing.T) {
	rows := []Row{
		NewRow([]string{"1", "2", "3"}, 3),
		{NewCell("x")},
	}
	tbl := NewTable(NewRow([]string{"a", "b", "c"}, 3), rows, 3)
	require.Equal(t, 2, tbl.RowCount())
	for i := 0; i < tbl.RowCount(); i++ {
		assert.Len(t, tbl.Row(i), tbl.ColumnCount())
	}
	assert.Equal(t, "x", tbl.Cell(1, 0).Value())
	assert.Equal(t, "", tbl.Cell(1, 2).Value())
}

func TestTable_CellOutOfRange(t *testing.T) {
	tbl := NewTable(nil, []Row{NewRow([]string{"a"}, 1)}, 1)
	assert.Equal(t, Cell{}, tbl.Cell(5, 0))
	assert.Equal(t, Cell{}, tbl.Cell(0, -1))

	var nilTable *Table
	assert.Equal(t, 0, nilTable.RowCount())
	assert.Equal(t, 0, nilTable.ColumnCount())
}

func TestColumnName(t *testing.T) {
	tbl := NewTable(NewRow([]string{"id", " "}, 3), nil, 3)
	assert.Equal(t, "id", tbl.ColumnName(0))
	assert.Equal(t, "B", tbl.ColumnName(1), "blank header falls back to letters")
	assert.Equal(t, "C", tbl.ColumnName(2))

	assert.Equal(t, "A", ColumnLetters(0))
	assert.Equal(t, "Z", ColumnLetters(25))
	assert.Equal(t, "AA", ColumnLetters(26))
	assert.Equal(t, "AZ", ColumnLetters(51))
	assert.Equal(t, "BA", ColumnLetters(52))
}

func TestTable_SliceKeepsRowNumbers(t *testing.T) {
	var rows []Row
	for _, v := range []string{"a", "b", "c", "d"} {
		rows = append(rows, NewRow([]string{v}, 1))
	}
	tbl := NewTable(nil, rows, 1)

	s := tbl.Slice(1, 3)
	require.Equal(t, 2, s.RowCount())
	assert.Equal(t, "b", s.Cell(0, 0).Value())
	assert.Equal(t, 2, s.RowNumber(0))

	nested := s.Slice(1, 10)
	assert.Equal(t, 1, nested.RowCount())
	assert.Equal(t, 3, nested.RowNumber(0))

	assert.Equal(t, 0, tbl.Slice(3, 1).RowCount())
}

func searchTable() *Table {
	return NewTable(
		NewRow([]string{"name", "city"}, 2),
		[]Row{
			NewRow([]string{"Alice", "Paris"}, 2),
			NewRow([]string{"Bob", "Berlin"}, 2),
			NewRow([]string{"Carol", "paris"}, 2),
		},
		2,
	)
}

func TestFind_ForwardWrapsAround(t *testing.T) {
	tbl := searchTable()

	pos, ok := tbl.Find("PARIS", Position{Row: 0, Col: 0}, true)
	require.True(t, ok)
	assert.Equal(t, Position{Row: 0, Col: 1}, pos)

	pos, ok = tbl.Find("paris", pos, true)
	require.True(t, ok)
	assert.Equal(t, Position{Row: 2, Col: 1}, pos)

	pos, ok = tbl.Find("paris", pos, true)
	require.True(t, ok)
	assert.Equal(t, Position{Row: 0, Col: 1}, pos, "search wraps to the top")
}

func TestFind_Backward(t *testing.T) {
	tbl := searchTable()
	pos, ok := tbl.Find("paris", Position{Row: 0, Col: 1}, false)
	require.True(t, ok)
	assert.Equal(t, Position{Row: 2, Col: 1}, pos)
}

func TestFind_NoMatch(t *testing.T) {
	tbl := searchTable()
	_, ok := tbl.Find("tokyo", Position{}, true)
	assert.False(t, ok)
	_, ok = tbl.Find("", Position{}, true)
	assert.False(t, ok)
	_, ok = Empty().Find("x", Position{}, true)
	assert.False(t, ok)
}

func TestFind_SingleMatchReturnsItself(t *testing.T) {
	tbl := searchTable()
	pos, ok := tbl.Find("bob", Position{Row: 1, Col: 0}, true)
	require.True(t, ok)
	assert.Equal(t, Position{Row: 1, Col: 0}, pos)
}

func TestCountMatches(t *testing.T) {
	tbl := searchTable()
	assert.Equal(t, 2, tbl.CountMatches("paris"))
	assert.Equal(t, 0, tbl.CountMatches(""))
	assert.True(t, tbl.Cell(1, 1).Matches("ERL"))
}
