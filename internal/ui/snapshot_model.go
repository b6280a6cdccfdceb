package ui

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// SnapshotConfig configures a non-interactive render.
type SnapshotConfig struct {
	Width  int
	Height int
	// Plain strips all escape sequences from the output.
	Plain bool
}

// RenderSnapshot renders one frame without a terminal, using the same code
// path as the interactive program. opts.Preloaded must hold the parse
// result; opts.StartKeys are applied before rendering.
func RenderSnapshot(opts ModelOptions, cfg SnapshotConfig) string {
	opts.AltScreen = false
	m := NewModel(context.Background(), opts)

	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	ApplyStartupKeys(m, opts.StartKeys)

	view := m.Render()
	if cfg.Plain {
		view = ansi.Strip(view)
	}
	return padSnapshotHeight(view, height, width)
}

func padSnapshotHeight(view string, height, width int) string {
	if height <= 0 {
		return view
	}
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
