package render

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/csvx/internal/record"
)

// Ellipsis marks text cut to fit its slot.
const Ellipsis = "…"

// truncateString cuts s to at most width display cells, ending in an
// ellipsis when anything was removed.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// padToWidth right-pads s with spaces to the given display width.
func padToWidth(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// padLeft right-aligns s within width.
func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

// fitCell truncates then pads s to exactly width cells. Wide runes that would
// straddle the edge are replaced by padding.
func fitCell(s string, width int) string {
	return padToWidth(truncateString(s, width), width)
}

// fitDisplay fits the display form of c to exactly width cells. The cached
// cell width is used, so text is only measured again when it must be cut.
func fitDisplay(c record.Cell, width int) string {
	if width <= 0 {
		return ""
	}
	if w := c.Width(); w <= width {
		return c.Display() + strings.Repeat(" ", width-w)
	}
	return padToWidth(runewidth.Truncate(c.Display(), width, Ellipsis), width)
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
