// Package layout decides, for one frame, which rows and columns of a table are
// visible and how wide each column is drawn.
//
// Partial-fit policy: columns are placed left to right from the first visible
// column. The first column that does not fully fit is drawn truncated (with an
// ellipsis) when at least MinWidth cells remain, and omitted otherwise. The
// first visible column is always drawn, truncated to the screen if needed.
package layout

import (
	"strconv"

	"github.com/oakwood-commons/csvx/internal/record"
	"github.com/oakwood-commons/csvx/internal/viewstate"
)

// Lines reserved around the data rows: header, header rule and status line.
const baseReservedRows = 3

// Config controls column sizing.
type Config struct {
	MinWidth       int  `yaml:"min_column_width" toml:"min_column_width"`
	MaxWidth       int  `yaml:"max_column_width" toml:"max_column_width"`
	SampleRows     int  `yaml:"sample_rows" toml:"sample_rows"`
	SeparatorWidth int  `yaml:"separator_width" toml:"separator_width"`
	RowNumbers     bool `yaml:"row_numbers" toml:"row_numbers"`
}

// DefaultConfig returns the built-in sizing rules.
func DefaultConfig() Config {
	return Config{
		MinWidth:       3,
		MaxWidth:       40,
		SampleRows:     100,
		SeparatorWidth: 1,
		RowNumbers:     true,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MinWidth <= 0 {
		c.MinWidth = d.MinWidth
	}
	if c.MaxWidth <= 0 {
		c.MaxWidth = d.MaxWidth
	}
	if c.MaxWidth < c.MinWidth {
		c.MaxWidth = c.MinWidth
	}
	if c.SampleRows < 0 {
		c.SampleRows = 0
	}
	if c.SeparatorWidth < 0 {
		c.SeparatorWidth = 0
	}
	return c
}

// Column is one visible column slot.
type Column struct {
	Index int // table column index
	X     int // screen offset of the first cell
	Width int // drawn width
	// Truncated is set when Width is narrower than the column's natural width.
	Truncated bool
}

// Layout is the per-frame geometry. It is never cached across frames.
type Layout struct {
	Width, Height int
	// Columns are the visible column slots, left to right.
	Columns []Column
	// FirstCol is the table index of the leftmost visible column.
	FirstCol int
	// GutterWidth is the width of the row-number gutter, 0 when disabled.
	GutterWidth int
	// RowStart and RowEnd bound the visible data rows, half-open.
	RowStart, RowEnd int
	// DataRows is the number of data lines available on screen.
	DataRows int
	// SeparatorWidth is the gap between adjacent columns.
	SeparatorWidth int
}

// Column returns the slot of table column c, if visible.
func (l Layout) Column(c int) (Column, bool) {
	for _, col := range l.Columns {
		if col.Index == c {
			return col, true
		}
	}
	return Column{}, false
}

// Engine computes layouts. The zero value uses DefaultConfig.
type Engine struct {
	Config Config
	// ExtraRows reserves additional lines, such as a warning banner.
	ExtraRows int
}

// New returns an Engine for cfg.
func New(cfg Config) *Engine {
	return &Engine{Config: cfg}
}

func (e *Engine) config() Config {
	if e == nil {
		return DefaultConfig()
	}
	if e.Config == (Config{}) {
		return DefaultConfig()
	}
	return e.Config.normalized()
}

// ReservedRows is the number of screen lines that never hold data rows.
func (e *Engine) ReservedRows() int {
	if e == nil {
		return baseReservedRows
	}
	return baseReservedRows + max(e.ExtraRows, 0)
}

// DataRows is the number of data lines that fit in height; at least one.
func (e *Engine) DataRows(height int) int {
	return max(height-e.ReservedRows(), 1)
}

// GutterWidth is the width of the row-number gutter for t: the digits of the
// largest row number plus one blank.
func (e *Engine) GutterWidth(t *record.Table) int {
	if !e.config().RowNumbers {
		return 0
	}
	last := 1
	if n := t.RowCount(); n > 0 {
		last = t.RowNumber(n - 1)
	}
	return len(strconv.Itoa(last)) + 1
}

// ColumnWidth is the natural width of column c: the widest cell among the
// header, the first SampleRows rows and rows [rowStart, rowEnd), clamped to
// [MinWidth, MaxWidth].
func (e *Engine) ColumnWidth(t *record.Table, c, rowStart, rowEnd int) int {
	cfg := e.config()
	w := record.NewCell(t.ColumnName(c)).Width()
	n := t.RowCount()
	for r := 0; r < min(cfg.SampleRows, n); r++ {
		w = max(w, t.Cell(r, c).Width())
	}
	for r := max(rowStart, cfg.SampleRows); r < min(rowEnd, n); r++ {
		w = max(w, t.Cell(r, c).Width())
	}
	return min(max(w, cfg.MinWidth), cfg.MaxWidth)
}

// Fit returns how many columns starting at firstCol are fully visible in a
// screen of the given width. The result is at least 1.
func (e *Engine) Fit(t *record.Table, firstCol, width, rowStart, rowEnd int) int {
	cfg := e.config()
	avail := e.available(t, width)
	used, n := 0, 0
	for c := firstCol; c < t.ColumnCount(); c++ {
		need := e.ColumnWidth(t, c, rowStart, rowEnd)
		if n > 0 {
			need += cfg.SeparatorWidth
		}
		if used+need > avail {
			break
		}
		used += need
		n++
	}
	return max(n, 1)
}

// available is the width left for columns once the gutter is drawn. A gutter
// that would leave no room is dropped.
func (e *Engine) available(t *record.Table, width int) int {
	g := e.GutterWidth(t)
	if width-g < 1 {
		return max(width, 1)
	}
	return width - g
}

// Viewport adapts the engine to viewstate. Fit reads vs at call time so that
// column fitting sees row scrolling done earlier in the same adjustment.
func (e *Engine) Viewport(t *record.Table, vs *viewstate.ViewState, width, height int) viewstate.Viewport {
	rows := e.DataRows(height)
	return viewstate.Viewport{
		Rows: rows,
		Fit: func(firstCol int) int {
			start := vs.ScrollRow
			return e.Fit(t, firstCol, width, start, start+rows)
		},
	}
}

// Compute builds the layout for one frame.
func (e *Engine) Compute(t *record.Table, vs viewstate.ViewState, width, height int) Layout {
	cfg := e.config()
	l := Layout{
		Width:          width,
		Height:         height,
		DataRows:       e.DataRows(height),
		SeparatorWidth: cfg.SeparatorWidth,
	}
	n := t.RowCount()
	l.RowStart = min(max(vs.ScrollRow, 0), n)
	l.RowEnd = min(l.RowStart+l.DataRows, n)

	cols := t.ColumnCount()
	if cols == 0 || width <= 0 {
		return l
	}
	l.FirstCol = min(max(vs.ScrollCol, 0), cols-1)

	avail := e.available(t, width)
	if avail < width {
		l.GutterWidth = width - avail
	}

	x, used := l.GutterWidth, 0
	for c := l.FirstCol; c < cols; c++ {
		natural := e.ColumnWidth(t, c, l.RowStart, l.RowEnd)
		sep := 0
		if len(l.Columns) > 0 {
			sep = cfg.SeparatorWidth
		}
		if used+sep+natural <= avail {
			l.Columns = append(l.Columns, Column{Index: c, X: x + sep, Width: natural})
			x += sep + natural
			used += sep + natural
			continue
		}

		remaining := avail - used - sep
		switch {
		case len(l.Columns) == 0:
			w := max(min(natural, avail), 1)
			l.Columns = append(l.Columns, Column{Index: c, X: x, Width: w, Truncated: w < natural})
		case remaining >= cfg.MinWidth:
			l.Columns = append(l.Columns, Column{Index: c, X: x + sep, Width: remaining, Truncated: true})
		}
		break
	}
	return l
}
