// Package render turns a table, its view state and a layout into a Frame: an
// ordered list of role-tagged text lines plus the position of the selected
// cell. It never styles or writes anything; painters do that.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/csvx/internal/layout"
	"github.com/oakwood-commons/csvx/internal/record"
	"github.com/oakwood-commons/csvx/internal/viewstate"
)

// Role tells a painter how to style a span.
type Role int

const (
	RoleCell Role = iota
	RoleHeader
	RoleSelected
	RoleSelectedRow
	RoleRowNumber
	RoleSeparator
	RoleStatus
	RoleWarning
	RoleMatch
)

var roleNames = [...]string{
	RoleCell:        "cell",
	RoleHeader:      "header",
	RoleSelected:    "selected",
	RoleSelectedRow: "selected-row",
	RoleRowNumber:   "row-number",
	RoleSeparator:   "separator",
	RoleStatus:      "status",
	RoleWarning:     "warning",
	RoleMatch:       "match",
}

func (r Role) String() string {
	if r >= 0 && int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// Kind identifies what a line of the frame shows.
type Kind int

const (
	KindBanner Kind = iota
	KindHeader
	KindRule
	KindData
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindBanner:
		return "banner"
	case KindHeader:
		return "header"
	case KindRule:
		return "rule"
	case KindData:
		return "data"
	case KindStatus:
		return "status"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Span is a run of text drawn with one role.
type Span struct {
	Text string
	Role Role
}

// Instruction is one screen line.
type Instruction struct {
	Kind Kind
	// Row is the table row index for KindData lines, -1 otherwise.
	Row   int
	Spans []Span
}

// Text returns the unstyled line.
func (in Instruction) Text() string {
	var b strings.Builder
	for _, s := range in.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Highlight marks the selected cell on screen.
type Highlight struct {
	X, Y, Width int
	Visible     bool
}

// Frame is everything needed to draw one screen.
type Frame struct {
	Width, Height int
	Lines         []Instruction
	Highlight     Highlight
}

// String returns the unstyled frame, one line per instruction.
func (f Frame) String() string {
	lines := make([]string, len(f.Lines))
	for i, in := range f.Lines {
		lines[i] = in.Text()
	}
	return strings.Join(lines, "\n")
}

// Line returns the first instruction of the given kind.
func (f Frame) Line(kind Kind) (Instruction, bool) {
	for _, in := range f.Lines {
		if in.Kind == kind {
			return in, true
		}
	}
	return Instruction{}, false
}

// Status carries the non-table content of the status and banner lines.
type Status struct {
	// Source names the input, e.g. the file name.
	Source string
	// Warnings is the number of parse warnings.
	Warnings int
	// Banner, when set, is shown above the table (degraded mode).
	Banner string
	// Window describes an active row limit, e.g. "rows 1-10 of 99".
	Window string
	// Search highlights matching cells when non-empty.
	Search string
	// Message is a transient notice, e.g. "copied".
	Message string
	// Prompt replaces the status line while a prompt is open.
	Prompt string
}

const ruleGlyph = "─"

// Render builds the frame. It only reads its inputs.
func Render(t *record.Table, vs viewstate.ViewState, l layout.Layout, st Status) Frame {
	f := Frame{Width: l.Width, Height: l.Height}
	if st.Banner != "" {
		f.Lines = append(f.Lines, Instruction{
			Kind:  KindBanner,
			Row:   -1,
			Spans: []Span{{Text: fitCell(st.Banner, l.Width), Role: RoleWarning}},
		})
	}
	f.Lines = append(f.Lines, headerLine(t, l), ruleLine(l))

	for r := l.RowStart; r < l.RowEnd; r++ {
		if r == vs.SelectedRow {
			if col, ok := l.Column(vs.SelectedCol); ok {
				f.Highlight = Highlight{X: col.X, Y: len(f.Lines), Width: col.Width, Visible: true}
			}
		}
		f.Lines = append(f.Lines, dataLine(t, vs, l, r, st.Search))
	}

	f.Lines = append(f.Lines, statusLine(t, vs, l, st))
	return f
}

func headerLine(t *record.Table, l layout.Layout) Instruction {
	in := Instruction{Kind: KindHeader, Row: -1}
	if l.GutterWidth > 0 {
		in.Spans = append(in.Spans, Span{Text: strings.Repeat(" ", l.GutterWidth), Role: RoleRowNumber})
	}
	for i, col := range l.Columns {
		if i > 0 {
			in.Spans = append(in.Spans, separator(l))
		}
		name := record.NewCell(t.ColumnName(col.Index))
		in.Spans = append(in.Spans, Span{Text: fitDisplay(name, col.Width), Role: RoleHeader})
	}
	return in
}

func ruleLine(l layout.Layout) Instruction {
	width := l.GutterWidth
	for i, col := range l.Columns {
		if i > 0 {
			width += l.SeparatorWidth
		}
		width += col.Width
	}
	return Instruction{
		Kind:  KindRule,
		Row:   -1,
		Spans: []Span{{Text: strings.Repeat(ruleGlyph, width), Role: RoleSeparator}},
	}
}

func dataLine(t *record.Table, vs viewstate.ViewState, l layout.Layout, r int, search string) Instruction {
	in := Instruction{Kind: KindData, Row: r}
	selectedRow := r == vs.SelectedRow
	if l.GutterWidth > 0 {
		num := padLeft(strconv.Itoa(t.RowNumber(r)), l.GutterWidth-1) + " "
		in.Spans = append(in.Spans, Span{Text: truncateString(num, l.GutterWidth), Role: RoleRowNumber})
	}
	for i, col := range l.Columns {
		if i > 0 {
			in.Spans = append(in.Spans, separator(l))
		}
		cell := t.Cell(r, col.Index)
		role := RoleCell
		switch {
		case selectedRow && col.Index == vs.SelectedCol:
			role = RoleSelected
		case search != "" && cell.Matches(search):
			role = RoleMatch
		case selectedRow:
			role = RoleSelectedRow
		}
		in.Spans = append(in.Spans, Span{Text: fitDisplay(cell, col.Width), Role: role})
	}
	return in
}

func separator(l layout.Layout) Span {
	return Span{Text: strings.Repeat(" ", l.SeparatorWidth), Role: RoleSeparator}
}

func statusLine(t *record.Table, vs viewstate.ViewState, l layout.Layout, st Status) Instruction {
	in := Instruction{Kind: KindStatus, Row: -1}
	if st.Prompt != "" {
		in.Spans = []Span{{Text: fitCell(st.Prompt, l.Width), Role: RoleStatus}}
		return in
	}

	rows, cols := t.RowCount(), t.ColumnCount()
	row, col := 0, 0
	if rows > 0 {
		row = vs.SelectedRow + 1
	}
	if cols > 0 {
		col = vs.SelectedCol + 1
	}
	parts := []string{}
	if st.Source != "" {
		parts = append(parts, st.Source)
	}
	parts = append(parts, fmt.Sprintf("%d/%d", row, rows), fmt.Sprintf("col %d/%d", col, cols))
	if cols > 0 {
		parts = append(parts, record.NewCell(t.ColumnName(vs.SelectedCol)).Display())
	}
	if st.Window != "" {
		parts = append(parts, "["+st.Window+"]")
	}
	text := strings.Join(parts, "  ")

	var extra []Span
	if st.Warnings > 0 {
		noun := "warnings"
		if st.Warnings == 1 {
			noun = "warning"
		}
		extra = append(extra, Span{Text: fmt.Sprintf("  %d %s", st.Warnings, noun), Role: RoleWarning})
	}
	if st.Message != "" {
		extra = append(extra, Span{Text: "  " + st.Message, Role: RoleStatus})
	}

	in.Spans = append(in.Spans, Span{Text: text, Role: RoleStatus})
	in.Spans = append(in.Spans, extra...)
	return clipLine(in, l.Width)
}

// clipLine cuts the spans of a line to width display cells.
func clipLine(in Instruction, width int) Instruction {
	if width <= 0 {
		return in
	}
	out := in
	out.Spans = nil
	remaining := width
	for _, s := range in.Spans {
		if remaining <= 0 {
			break
		}
		text := truncateString(s.Text, remaining)
		remaining -= displayWidth(text)
		out.Spans = append(out.Spans, Span{Text: text, Role: s.Role})
	}
	return out
}
