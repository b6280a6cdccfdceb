package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/csvx/internal/csvparse"
	"github.com/oakwood-commons/csvx/internal/layout"
	"github.com/oakwood-commons/csvx/internal/limiter"
	"github.com/oakwood-commons/csvx/internal/record"
	"github.com/oakwood-commons/csvx/internal/render"
	"github.com/oakwood-commons/csvx/internal/viewstate"
)

// Action tells the event loop what to do after a key was handled.
type Action int

const (
	ActionNone Action = iota
	ActionRedraw
	ActionQuit
	ActionReload
	ActionCopy
	ActionSearchPrompt
	ActionGoToPrompt
	ActionToggleHelp
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRedraw:
		return "redraw"
	case ActionQuit:
		return "quit"
	case ActionReload:
		return "reload"
	case ActionCopy:
		return "copy"
	case ActionSearchPrompt:
		return "search-prompt"
	case ActionGoToPrompt:
		return "goto-prompt"
	case ActionToggleHelp:
		return "toggle-help"
	default:
		return "unknown"
	}
}

// Default terminal size used until the first resize arrives.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// AppOptions configures an App.
type AppOptions struct {
	Layout  layout.Config
	Limiter limiter.Config
	Keys    *KeyMap
	Logger  *logr.Logger
	// CheckInvariants validates the view state after every change and logs
	// violations at error level.
	CheckInvariants bool
}

// Loaded is the outcome of a parse handed to the App.
type Loaded struct {
	Source string
	Result *csvparse.Result
}

type pendingSize struct {
	width, height int
	set           bool
}

// App is the table session controller: it owns the table, the view state and
// the layout engine, and turns key strings into state changes. It does no
// I/O; the Bubble Tea model drives it.
type App struct {
	keys   KeyMap
	engine *layout.Engine
	limit  limiter.Config
	log    logr.Logger
	check  bool

	table    *record.Table
	source   string
	warnings int
	banner   string
	window   string

	vs      viewstate.ViewState
	width   int
	height  int
	pending pendingSize

	search  string
	message string
	prompt  string
}

// NewApp returns an App showing an empty table at the default size.
func NewApp(opts AppOptions) *App {
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	log := logr.Discard()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &App{
		keys:   keys,
		engine: layout.New(opts.Layout),
		limit:  opts.Limiter,
		log:    log,
		check:  opts.CheckInvariants,
		table:  record.Empty(),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
}

// Keys returns the key bindings in use.
func (a *App) Keys() KeyMap { return a.keys }

// Table returns the table being shown (after row limiting).
func (a *App) Table() *record.Table { return a.table }

// State returns a copy of the view state.
func (a *App) State() viewstate.ViewState { return a.vs }

// Size applies any pending resize and returns the terminal size.
func (a *App) Size() (width, height int) {
	a.applyPending()
	return a.width, a.height
}

// Banner returns the degraded-mode banner, if any.
func (a *App) Banner() string { return a.banner }

// Message returns the transient status message.
func (a *App) Message() string { return a.message }

// SetMessage shows a transient notice in the status line until the next key.
func (a *App) SetMessage(msg string) { a.message = msg }

// SetPrompt replaces the status line with text; "" restores it.
func (a *App) SetPrompt(text string) { a.prompt = text }

// SetTable replaces the table wholesale. The view state survives by clamping.
// A partial result (a parse stopped by a limit) shows a warning banner.
func (a *App) SetTable(l Loaded) {
	t := record.Empty()
	a.warnings, a.banner = 0, ""
	if l.Result != nil {
		if l.Result.Table != nil {
			t = l.Result.Table
		}
		a.warnings = l.Result.WarningCount
		if l.Result.Partial {
			a.banner = degradedBanner(l.Result, t.RowCount())
		}
	}
	total := t.RowCount()
	a.table = a.limit.Apply(t)
	a.window = a.limit.Describe(total)
	a.source = l.Source
	a.engine.ExtraRows = 0
	if a.banner != "" {
		a.engine.ExtraRows = 1
	}
	a.log.V(1).Info("table loaded", "source", a.source, "rows", a.table.RowCount(), "columns", a.table.ColumnCount(), "warnings", a.warnings, "partial", a.banner != "")
	a.vs.OnResize(a.shape(), a.viewport())
	a.verify("set-table")
}

func degradedBanner(res *csvparse.Result, rows int) string {
	if res.Limit == nil {
		return fmt.Sprintf("partial data: showing %d rows", rows)
	}
	return fmt.Sprintf("%s limit reached (max %d): showing the %d rows read before it", res.Limit.Kind, res.Limit.Limit, rows)
}

// Resize records a new terminal size. Only the latest pending size is
// applied, on the next frame or key.
func (a *App) Resize(width, height int) {
	a.pending = pendingSize{width: width, height: height, set: true}
}

func (a *App) applyPending() {
	if !a.pending.set {
		return
	}
	p := a.pending
	a.pending = pendingSize{}
	if p.width < 1 || p.height < 1 {
		return
	}
	if p.width == a.width && p.height == a.height {
		return
	}
	a.width, a.height = p.width, p.height
	a.vs.OnResize(a.shape(), a.viewport())
	a.verify("resize")
}

func (a *App) shape() viewstate.Shape {
	return viewstate.Shape{Rows: a.table.RowCount(), Cols: a.table.ColumnCount()}
}

func (a *App) viewport() viewstate.Viewport {
	return a.engine.Viewport(a.table, &a.vs, a.width, a.height)
}

// HandleKey applies one key (in Bubble Tea's string form, e.g. "down",
// "ctrl+f", "G") and reports what the caller should do next.
func (a *App) HandleKey(k string) Action {
	a.applyPending()
	a.message = ""

	if dir, ok := a.keys.direction(k); ok {
		if a.vs.Move(dir, 1, a.shape(), a.viewport()) {
			a.verify(dir.String())
			return ActionRedraw
		}
		return ActionNone
	}

	switch {
	case matches(k, a.keys.NextMatch):
		a.FindNext(true)
		return ActionRedraw
	case matches(k, a.keys.PrevMatch):
		a.FindNext(false)
		return ActionRedraw
	case matches(k, a.keys.Search):
		return ActionSearchPrompt
	case matches(k, a.keys.GoTo):
		return ActionGoToPrompt
	case matches(k, a.keys.Copy):
		return ActionCopy
	case matches(k, a.keys.Reload):
		return ActionReload
	case matches(k, a.keys.Help):
		return ActionToggleHelp
	case matches(k, a.keys.Quit):
		return ActionQuit
	}
	return ActionNone
}

// Search sets the query and moves to the next match after the selection.
// An empty query clears the search.
func (a *App) Search(query string) bool {
	a.applyPending()
	a.search = strings.TrimSpace(query)
	if a.search == "" {
		a.message = ""
		return false
	}
	return a.FindNext(true)
}

// SearchQuery returns the active search.
func (a *App) SearchQuery() string { return a.search }

// FindNext moves to the next (or previous) cell matching the active search,
// wrapping around the table.
func (a *App) FindNext(forward bool) bool {
	if a.search == "" {
		a.message = "no active search"
		return false
	}
	from := record.Position{Row: a.vs.SelectedRow, Col: a.vs.SelectedCol}
	pos, ok := a.table.Find(a.search, from, forward)
	if !ok {
		a.message = fmt.Sprintf("pattern not found: %s", a.search)
		return false
	}
	wrapped := forward && before(pos, from) || !forward && before(from, pos)
	a.vs.JumpTo(pos.Row, pos.Col, a.shape(), a.viewport())
	a.verify("search")
	if wrapped {
		a.message = "search wrapped"
	} else {
		a.message = fmt.Sprintf("/%s (%s)", a.search, matchCount(a.table.CountMatches(a.search)))
	}
	return true
}

func matchCount(n int) string {
	if n == 1 {
		return "1 match"
	}
	return fmt.Sprintf("%d matches", n)
}

func before(p, q record.Position) bool {
	return p.Row < q.Row || p.Row == q.Row && p.Col < q.Col
}

// GoTo selects the row whose displayed number is given. It accepts a row
// number, "$" for the last row, and an optional column after a comma, as a
// number or spreadsheet letters ("120", "120,C", "$,2").
func (a *App) GoTo(input string) error {
	a.applyPending()
	rowPart, colPart, hasCol := strings.Cut(strings.TrimSpace(input), ",")
	n := a.table.RowCount()
	if n == 0 {
		return fmt.Errorf("table is empty")
	}

	row := a.vs.SelectedRow
	switch rowPart = strings.TrimSpace(rowPart); rowPart {
	case "":
	case "$":
		row = n - 1
	default:
		num, err := strconv.Atoi(rowPart)
		if err != nil || num < 1 {
			return fmt.Errorf("invalid row %q", rowPart)
		}
		row = num - a.table.RowNumber(0)
	}

	col := a.vs.SelectedCol
	if hasCol {
		c, err := parseColumn(strings.TrimSpace(colPart))
		if err != nil {
			return err
		}
		col = c
	}
	a.vs.JumpTo(row, col, a.shape(), a.viewport())
	a.verify("goto")
	return nil
}

func parseColumn(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing column")
	}
	if num, err := strconv.Atoi(s); err == nil {
		if num < 1 {
			return 0, fmt.Errorf("invalid column %q", s)
		}
		return num - 1, nil
	}
	c := 0
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column %q", s)
		}
		c = c*26 + int(r-'A'+1)
	}
	return c - 1, nil
}

// SelectedCell returns the value under the cursor.
func (a *App) SelectedCell() record.Cell {
	return a.table.Cell(a.vs.SelectedRow, a.vs.SelectedCol)
}

// Layout computes the layout of the current frame.
func (a *App) Layout() layout.Layout {
	a.applyPending()
	return a.engine.Compute(a.table, a.vs, a.width, a.height)
}

// Frame applies any pending resize and renders the current screen.
func (a *App) Frame() render.Frame {
	l := a.Layout()
	return render.Render(a.table, a.vs, l, render.Status{
		Source:   a.source,
		Warnings: a.warnings,
		Banner:   a.banner,
		Window:   a.window,
		Search:   a.search,
		Message:  a.message,
		Prompt:   a.prompt,
	})
}

// verify logs view state invariant violations when checking is enabled.
func (a *App) verify(op string) {
	if !a.check {
		return
	}
	if err := a.vs.Check(a.shape(), a.viewport()); err != nil {
		a.log.Error(err, "view state invariant violated", "op", op, "state", a.vs.String(), "width", a.width, "height", a.height)
	}
}
