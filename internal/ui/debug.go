package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// debugLine summarizes the view state and the current layout. It is drawn
// under the table in --debug sessions.
func debugLine(a *App, width int) string {
	l := a.Layout()
	vs := a.State()
	t := a.Table()
	visibleCols := len(l.Columns)
	truncated := 0
	for _, c := range l.Columns {
		if c.Truncated {
			truncated++
		}
	}
	msg := fmt.Sprintf("DBG: win=%dx%d %s rows=[%d,%d)/%d cols=%d+%d(trunc=%d)/%d gutter=%d search=%q",
		l.Width, l.Height, vs.String(),
		l.RowStart, l.RowEnd, t.RowCount(),
		l.FirstCol, visibleCols, truncated, t.ColumnCount(),
		l.GutterWidth, a.SearchQuery())
	if width <= 0 {
		return msg
	}
	return runewidth.FillRight(runewidth.Truncate(msg, width, "…"), width)
}
