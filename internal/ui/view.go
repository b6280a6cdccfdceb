package ui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/csvx/internal/render"
)

// paint turns a frame into terminal text. Short tables keep the status line
// on the last screen row. A non-empty statusOverride (such as a focused text
// input) replaces the status line text.
func paint(f render.Frame, th Theme, statusOverride string) string {
	lines := make([]string, 0, max(f.Height, len(f.Lines)))
	for _, in := range f.Lines {
		if in.Kind == render.KindStatus {
			for len(lines) < f.Height-1 {
				lines = append(lines, "")
			}
			lines = append(lines, paintStatus(in, f.Width, th, statusOverride))
			continue
		}
		lines = append(lines, paintLine(in, th))
	}
	return strings.Join(lines, "\n")
}

func paintLine(in render.Instruction, th Theme) string {
	var b strings.Builder
	for _, s := range in.Spans {
		if s.Text == "" {
			continue
		}
		b.WriteString(th.Style(s.Role).Render(s.Text))
	}
	return b.String()
}

func paintStatus(in render.Instruction, width int, th Theme, override string) string {
	text := paintLine(in, th)
	if override != "" {
		text = override
	}
	if pad := width - lipgloss.Width(text); pad > 0 {
		text += th.Status.Render(strings.Repeat(" ", pad))
	}
	return text
}
