package record

import "strings"

// Position addresses a data cell.
type Position struct {
	Row int
	Col int
}

// Find searches the data rows for the first cell whose value contains query
// (case-insensitive), starting just after from (or just before it when
// forward is false) in row-major order and wrapping around. The cell at from
// is examined last, so repeated calls step through every match.
func (t *Table) Find(query string, from Position, forward bool) (Position, bool) {
	rows, cols := t.RowCount(), t.ColumnCount()
	if query == "" || rows == 0 || cols == 0 {
		return Position{}, false
	}
	needle := strings.ToLower(query)
	total := rows * cols
	start := clampIndex(from.Row, rows)*cols + clampIndex(from.Col, cols)
	step := 1
	if !forward {
		step = -1
	}
	for i := 1; i <= total; i++ {
		idx := ((start+step*i)%total + total) % total
		r, c := idx/cols, idx%cols
		if containsFold(t.rows[r][c].value, needle) {
			return Position{Row: r, Col: c}, true
		}
	}
	return Position{}, false
}

// CountMatches returns the number of data cells containing query.
func (t *Table) CountMatches(query string) int {
	if query == "" {
		return 0
	}
	needle := strings.ToLower(query)
	n := 0
	for _, row := range t.rowsOrNil() {
		for _, cell := range row {
			if containsFold(cell.value, needle) {
				n++
			}
		}
	}
	return n
}

// Matches reports whether the cell contains query, case-insensitively.
func (c Cell) Matches(query string) bool {
	return query != "" && containsFold(c.value, strings.ToLower(query))
}

func (t *Table) rowsOrNil() []Row {
	if t == nil {
		return nil
	}
	return t.rows
}

func containsFold(value, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(value), lowerNeedle)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
