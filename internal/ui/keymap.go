package ui

import (
	"charm.land/bubbles/v2/key"

	"github.com/oakwood-commons/csvx/internal/viewstate"
)

// KeyMap holds every binding of the table view. It satisfies help.KeyMap.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Home      key.Binding
	End       key.Binding
	Top       key.Binding
	Bottom    key.Binding
	LineStart key.Binding
	LineEnd   key.Binding
	Search    key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding
	GoTo      key.Binding
	Copy      key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup/ctrl+b", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f", "space"),
			key.WithHelp("pgdn/ctrl+f", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first row"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last row"),
		),
		Top: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("ctrl+home", "top-left cell"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("ctrl+end", "bottom-right cell"),
		),
		LineStart: key.NewBinding(
			key.WithKeys("0", "^"),
			key.WithHelp("0", "first column"),
		),
		LineEnd: key.NewBinding(
			key.WithKeys("$"),
			key.WithHelp("$", "last column"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous match"),
		),
		GoTo: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "go to row"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy cell"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// ShortHelp is shown in the collapsed help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.GoTo, k.Copy, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.PageUp, k.PageDown, k.Home, k.End},
		{k.Top, k.Bottom, k.LineStart, k.LineEnd},
		{k.Search, k.NextMatch, k.PrevMatch, k.GoTo},
		{k.Copy, k.Reload, k.Help, k.Quit},
	}
}

// matches reports whether the key string s triggers b.
func matches(s string, b key.Binding) bool {
	if !b.Enabled() {
		return false
	}
	for _, k := range b.Keys() {
		if k == s {
			return true
		}
	}
	return false
}

// direction maps a navigation key to a viewstate direction.
func (k KeyMap) direction(s string) (viewstate.Direction, bool) {
	moves := []struct {
		binding key.Binding
		dir     viewstate.Direction
	}{
		{k.Up, viewstate.Up},
		{k.Down, viewstate.Down},
		{k.Left, viewstate.Left},
		{k.Right, viewstate.Right},
		{k.PageUp, viewstate.PageUp},
		{k.PageDown, viewstate.PageDown},
		{k.Home, viewstate.Home},
		{k.End, viewstate.End},
		{k.Top, viewstate.Top},
		{k.Bottom, viewstate.Bottom},
		{k.LineStart, viewstate.LineStart},
		{k.LineEnd, viewstate.LineEnd},
	}
	for _, m := range moves {
		if matches(s, m.binding) {
			return m.dir, true
		}
	}
	return 0, false
}
