// Package viewstate holds the navigation cursor over a table and the rules
// that keep it consistent: selection clamping and the scrolling invariant
// (the selected cell is always inside the visible window).
//
// Everything here is pure; callers supply the table shape and the viewport.
package viewstate

import "fmt"

// Direction is a relative navigation command.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
	PageUp
	PageDown
	// Home and End move to the first and last row, keeping the column.
	Home
	End
	// Top and Bottom move to the top-left and bottom-right cells.
	Top
	Bottom
	// LineStart and LineEnd move to the first and last column, keeping the row.
	LineStart
	LineEnd
)

var directionNames = [...]string{
	Up:        "up",
	Down:      "down",
	Left:      "left",
	Right:     "right",
	PageUp:    "page-up",
	PageDown:  "page-down",
	Home:      "home",
	End:       "end",
	Top:       "top",
	Bottom:    "bottom",
	LineStart: "line-start",
	LineEnd:   "line-end",
}

func (d Direction) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Shape is the size of the table being navigated.
type Shape struct {
	Rows int
	Cols int
}

// Viewport describes how much of the table is visible.
type Viewport struct {
	// Rows is the number of data rows that fit on screen.
	Rows int
	// Fit returns how many columns starting at firstCol are fully visible.
	// A nil Fit treats every column as visible.
	Fit func(firstCol int) int
}

func (v Viewport) rows() int {
	return max(v.Rows, 1)
}

func (v Viewport) fit(firstCol, cols int) int {
	if v.Fit == nil {
		return max(cols-firstCol, 1)
	}
	return max(v.Fit(firstCol), 1)
}

// ViewState is the selection and scroll position. The zero value is the
// top-left cell with no scrolling.
type ViewState struct {
	SelectedRow int
	SelectedCol int
	ScrollRow   int
	ScrollCol   int
}

// Move applies a relative navigation command amount times (page moves count
// whole pages) and scrolls minimally to keep the selection visible. Moving
// past an edge leaves the state unchanged. It reports whether the selection
// changed.
func (s *ViewState) Move(dir Direction, amount int, shape Shape, vp Viewport) bool {
	if shape.Rows == 0 || shape.Cols == 0 {
		return false
	}
	amount = max(amount, 1)
	row, col := s.SelectedRow, s.SelectedCol
	switch dir {
	case Up:
		row -= amount
	case Down:
		row += amount
	case Left:
		col -= amount
	case Right:
		col += amount
	case PageUp:
		row -= amount * vp.rows()
	case PageDown:
		row += amount * vp.rows()
	case Home:
		row = 0
	case End:
		row = shape.Rows - 1
	case Top:
		row, col = 0, 0
	case Bottom:
		row, col = shape.Rows-1, shape.Cols-1
	case LineStart:
		col = 0
	case LineEnd:
		col = shape.Cols - 1
	default:
		return false
	}
	row = clamp(row, 0, shape.Rows-1)
	col = clamp(col, 0, shape.Cols-1)
	if row == s.SelectedRow && col == s.SelectedCol {
		return false
	}
	s.SelectedRow, s.SelectedCol = row, col
	s.EnsureVisible(shape, vp)
	return true
}

// JumpTo selects an absolute cell, clamped to the table.
func (s *ViewState) JumpTo(row, col int, shape Shape, vp Viewport) {
	s.SelectedRow = clamp(row, 0, shape.Rows-1)
	s.SelectedCol = clamp(col, 0, shape.Cols-1)
	s.EnsureVisible(shape, vp)
}

// OnResize re-establishes the invariants after the viewport or the table
// changed. The selection only moves when it fell outside a shrunk table.
func (s *ViewState) OnResize(shape Shape, vp Viewport) {
	s.SelectedRow = clamp(s.SelectedRow, 0, shape.Rows-1)
	s.SelectedCol = clamp(s.SelectedCol, 0, shape.Cols-1)
	s.EnsureVisible(shape, vp)
}

// EnsureVisible adjusts the scroll offsets as little as possible so that the
// selected cell lies inside the viewport.
func (s *ViewState) EnsureVisible(shape Shape, vp Viewport) {
	if shape.Rows == 0 {
		s.SelectedRow, s.ScrollRow = 0, 0
	} else {
		visible := vp.rows()
		// no blank rows below the last one when the window could be full
		s.ScrollRow = clamp(s.ScrollRow, 0, max(shape.Rows-visible, 0))
		if s.SelectedRow < s.ScrollRow {
			s.ScrollRow = s.SelectedRow
		} else if s.SelectedRow >= s.ScrollRow+visible {
			s.ScrollRow = s.SelectedRow - visible + 1
		}
	}

	if shape.Cols == 0 {
		s.SelectedCol, s.ScrollCol = 0, 0
		return
	}
	s.ScrollCol = clamp(s.ScrollCol, 0, shape.Cols-1)
	if s.SelectedCol < s.ScrollCol {
		s.ScrollCol = s.SelectedCol
		return
	}
	for s.ScrollCol < s.SelectedCol && s.SelectedCol >= s.ScrollCol+vp.fit(s.ScrollCol, shape.Cols) {
		s.ScrollCol++
	}
}

// Check reports the first violated invariant, or nil.
func (s ViewState) Check(shape Shape, vp Viewport) error {
	switch {
	case shape.Rows == 0 && (s.SelectedRow != 0 || s.ScrollRow != 0):
		return fmt.Errorf("empty table but row selection is %d (scroll %d)", s.SelectedRow, s.ScrollRow)
	case shape.Cols == 0 && (s.SelectedCol != 0 || s.ScrollCol != 0):
		return fmt.Errorf("no columns but column selection is %d (scroll %d)", s.SelectedCol, s.ScrollCol)
	case shape.Rows > 0 && (s.SelectedRow < 0 || s.SelectedRow >= shape.Rows):
		return fmt.Errorf("selected row %d outside [0, %d)", s.SelectedRow, shape.Rows)
	case shape.Cols > 0 && (s.SelectedCol < 0 || s.SelectedCol >= shape.Cols):
		return fmt.Errorf("selected column %d outside [0, %d)", s.SelectedCol, shape.Cols)
	case s.ScrollRow < 0 || s.ScrollRow > s.SelectedRow:
		return fmt.Errorf("scroll row %d not in [0, selected row %d]", s.ScrollRow, s.SelectedRow)
	case s.SelectedRow >= s.ScrollRow+vp.rows():
		return fmt.Errorf("selected row %d below window [%d, %d)", s.SelectedRow, s.ScrollRow, s.ScrollRow+vp.rows())
	case s.ScrollCol < 0 || s.ScrollCol > s.SelectedCol:
		return fmt.Errorf("scroll column %d not in [0, selected column %d]", s.ScrollCol, s.SelectedCol)
	}
	if shape.Cols > 0 {
		if fit := vp.fit(s.ScrollCol, shape.Cols); s.SelectedCol >= s.ScrollCol+fit {
			return fmt.Errorf("selected column %d right of window [%d, %d)", s.SelectedCol, s.ScrollCol, s.ScrollCol+fit)
		}
	}
	return nil
}

func (s ViewState) String() string {
	return fmt.Sprintf("sel=(%d,%d) scroll=(%d,%d)", s.SelectedRow, s.SelectedCol, s.ScrollRow, s.ScrollCol)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
