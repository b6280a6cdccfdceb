package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/csvx/internal/config"
	"github.com/oakwood-commons/csvx/internal/csvparse"
	"github.com/oakwood-commons/csvx/internal/render"
	"github.com/oakwood-commons/csvx/pkg/loader"
)

// messageTimeout is how long transient notices (such as "copied") stay up.
const messageTimeout = 3 * time.Second

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptGoTo
)

func (p promptKind) label() string {
	switch p {
	case promptSearch:
		return "/"
	case promptGoTo:
		return ":"
	}
	return ""
}

// LoadFunc produces the parse result for a source. The default is loader.Load.
type LoadFunc func(ctx context.Context, src loader.Source, opts loader.Options) (*csvparse.Result, error)

// ModelOptions configures the Bubble Tea model.
type ModelOptions struct {
	Source  loader.Source
	Load    loader.Options
	OnLimit config.OnLimit
	App     AppOptions
	Theme   Theme
	// LoadFunc overrides the loader, mainly for tests.
	LoadFunc LoadFunc
	// Preloaded skips the background parse and shows this result.
	Preloaded *csvparse.Result
	// AltScreen draws on the alternate screen.
	AltScreen bool
	// Debug adds a diagnostics line under the table.
	Debug bool
	// StartKeys are replayed once the first table is shown.
	StartKeys []string
}

// loadedMsg carries a finished parse back to the update loop. The table in
// it is never touched by the worker again.
type loadedMsg struct {
	seq    int
	result *csvparse.Result
	err    error
}

type clipboardMsg struct {
	text string
	err  error
}

type clearMessageMsg struct {
	seq int
}

// Model is the Bubble Tea model around an App. The update loop is the single
// owner of the App; the only background work is the parse command.
type Model struct {
	app   *App
	opts  ModelOptions
	keys  KeyMap
	theme Theme
	log   logr.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	loadSeq int
	loading bool
	spinner spinner.Model

	input  textinput.Model
	prompt promptKind

	help     help.Model
	showHelp bool

	msgSeq int
	err    error
}

// NewModel builds the model. ctx bounds the background parse.
func NewModel(ctx context.Context, opts ModelOptions) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.LoadFunc == nil {
		opts.LoadFunc = loader.Load
	}
	app := NewApp(opts.App)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = opts.Theme.Spinner

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.SetWidth(DefaultWidth)

	h := help.New()
	opts.Theme.applyHelpStyles(&h)
	h.ShowAll = true
	h.SetWidth(DefaultWidth)

	log := logr.Discard()
	if opts.App.Logger != nil {
		log = *opts.App.Logger
	}

	m := &Model{
		app:     app,
		opts:    opts,
		keys:    app.Keys(),
		theme:   opts.Theme,
		log:     log,
		ctx:     ctx,
		spinner: s,
		input:   ti,
		help:    h,
		loading: opts.Preloaded == nil,
	}
	if opts.Preloaded != nil {
		m.app.SetTable(Loaded{Source: opts.Source.Name(), Result: opts.Preloaded})
	}
	return m
}

// App exposes the controller, for snapshots and tests.
func (m *Model) App() *App { return m.app }

// Err is the fatal error that ended the program, if any.
func (m *Model) Err() error { return m.err }

// Loading reports whether the initial parse is still running.
func (m *Model) Loading() bool { return m.loading }

// Init starts the spinner and the background parse.
func (m *Model) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

// loadCmd starts a parse with a fresh cancellable context. Results of older
// parses are discarded by sequence number.
func (m *Model) loadCmd() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.loadSeq++
	seq := m.loadSeq
	src, opts, load := m.opts.Source, m.opts.Load, m.opts.LoadFunc
	return func() tea.Msg {
		res, err := load(ctx, src, opts)
		return loadedMsg{seq: seq, result: res, err: err}
	}
}

func (m *Model) cancelLoad() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.app.Resize(msg.Width, m.tableHeight(msg.Height))
		m.help.SetWidth(msg.Width)
		m.input.SetWidth(max(msg.Width-2, 1))
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		return m, m.handleLoaded(msg)

	case clipboardMsg:
		if msg.err != nil {
			m.log.V(1).Info("system clipboard unavailable, using terminal clipboard", "error", msg.err.Error())
			return m, tea.Batch(tea.SetClipboard(msg.text), m.flash("copied (terminal clipboard)"))
		}
		return m, m.flash("copied")

	case clearMessageMsg:
		if msg.seq == m.msgSeq {
			m.app.SetMessage("")
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoaded(msg loadedMsg) tea.Cmd {
	if msg.seq != m.loadSeq {
		return nil
	}
	initial := m.loading
	m.loading = false
	m.cancel = nil

	err := msg.err
	var le *csvparse.LimitError
	if errors.As(err, &le) && m.opts.OnLimit == config.OnLimitTruncate && msg.result != nil {
		m.log.Info("limit reached, showing partial data", "limit", le.Kind.String(), "max", le.Limit)
		err = nil
	}
	if err != nil {
		if initial {
			m.err = err
			return tea.Quit
		}
		m.log.Error(err, "reload failed", "source", m.opts.Source.Name())
		return m.flash(fmt.Sprintf("reload failed: %v", err))
	}
	m.app.SetTable(Loaded{Source: m.opts.Source.Name(), Result: msg.result})
	if !initial {
		return m.flash("reloaded")
	}
	ApplyStartupKeys(m, m.opts.StartKeys)
	return nil
}

// flash shows a notice and clears it after messageTimeout.
func (m *Model) flash(text string) tea.Cmd {
	m.msgSeq++
	seq := m.msgSeq
	m.app.SetMessage(text)
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	if m.loading {
		if key.Matches(msg, m.keys.Quit) {
			m.cancelLoad()
			return m, tea.Quit
		}
		return m, nil
	}

	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), k == "esc":
			m.showHelp = false
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.app.HandleKey(k) {
	case ActionQuit:
		m.cancelLoad()
		return m, tea.Quit
	case ActionSearchPrompt:
		return m, m.openPrompt(promptSearch, m.app.SearchQuery())
	case ActionGoToPrompt:
		return m, m.openPrompt(promptGoTo, "")
	case ActionToggleHelp:
		m.showHelp = !m.showHelp
	case ActionCopy:
		return m, copyCmd(m.app.SelectedCell().Value())
	case ActionReload:
		if m.opts.Source.IsStdin() {
			return m, m.flash("cannot reload stdin")
		}
		m.app.SetMessage("reloading…")
		return m, m.loadCmd()
	}
	return m, nil
}

func (m *Model) openPrompt(kind promptKind, value string) tea.Cmd {
	m.prompt = kind
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.syncPrompt()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.app.SetPrompt("")
}

func (m *Model) syncPrompt() {
	m.app.SetPrompt(m.prompt.label() + m.input.Value())
}

func (m *Model) handlePromptKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.closePrompt()
		return m, nil
	case "enter":
		kind, value := m.prompt, m.input.Value()
		m.closePrompt()
		switch kind {
		case promptSearch:
			m.app.Search(value)
		case promptGoTo:
			if err := m.app.GoTo(value); err != nil {
				m.app.SetMessage(err.Error())
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncPrompt()
	return m, cmd
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{text: text, err: CopyToClipboard(text)}
	}
}

// tableHeight is the height handed to the App; the debug line takes one row.
func (m *Model) tableHeight(height int) int {
	if m.opts.Debug {
		return max(height-1, 1)
	}
	return height
}

// View renders the screen.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = m.opts.AltScreen
	return v
}

// Render returns the screen as text.
func (m *Model) Render() string {
	width, height := m.app.Size()
	if m.loading {
		return m.renderLoading(width, height)
	}
	frame := m.app.Frame()
	width, height = frame.Width, frame.Height
	if m.showHelp {
		return m.renderHelp(width, height)
	}
	override := ""
	if m.prompt != promptNone {
		override = m.theme.Status.Render(m.prompt.label()) + m.input.View()
	}
	out := paint(frame, m.theme, override)
	if m.opts.Debug {
		out += "\n" + debugLine(m.app, width)
	}
	return out
}

func (m *Model) renderLoading(width, height int) string {
	text := fmt.Sprintf("%s loading %s…", m.spinner.View(), m.opts.Source.Name())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

func (m *Model) renderHelp(width, height int) string {
	title := m.theme.Style(render.RoleHeader).Render("csvx keys")
	body := m.help.View(m.keys)
	footer := m.theme.HelpValue.Render("press ? or esc to close")
	block := strings.Join([]string{title, "", body, "", footer}, "\n")
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, block)
}
