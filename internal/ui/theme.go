package ui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/csvx/internal/config"
	"github.com/oakwood-commons/csvx/internal/render"
)

// Theme maps render roles to lipgloss styles.
type Theme struct {
	Name   string
	styles map[render.Role]lipgloss.Style
	// Status is applied to the whole status line, padding included.
	Status    lipgloss.Style
	Spinner   lipgloss.Style
	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
}

// Style returns the style of role, or the plain style.
func (t Theme) Style(role render.Role) lipgloss.Style {
	if s, ok := t.styles[role]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// fallbackTheme is used when the configuration cannot provide a theme.
func fallbackTheme() config.ThemeConfig {
	return config.ThemeConfig{
		HeaderFG:      "81",  // cyan title
		HeaderBG:      "236", // charcoal header background
		CellFG:        "252",
		SelectedFG:    "255",
		SelectedBG:    "24", // deep teal selection
		SelectedRowBG: "236",
		RowNumberFG:   "244", // muted gutter
		SeparatorFG:   "238", // subtle rule
		StatusFG:      "81",
		StatusBG:      "236",
		WarningFG:     "203", // softer red for warnings
		MatchFG:       "16",
		MatchBG:       "179",
		HelpKey:       "81",
		HelpValue:     "245",
	}
}

// colorOf converts a config token; "" means no color.
func colorOf(v config.ColorValue) (color.Color, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil, false
	}
	return lipgloss.Color(s), true
}

func styled(fg, bg config.ColorValue) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c, ok := colorOf(fg); ok {
		s = s.Foreground(c)
	}
	if c, ok := colorOf(bg); ok {
		s = s.Background(c)
	}
	return s
}

// NewTheme builds the styles for tc. With noColor, or a theme that defines
// no colors (mono), selection and matches fall back to reverse video.
func NewTheme(name string, tc config.ThemeConfig, noColor bool) Theme {
	if noColor {
		tc = config.ThemeConfig{}
	}
	mono := tc == (config.ThemeConfig{})

	t := Theme{
		Name: name,
		styles: map[render.Role]lipgloss.Style{
			render.RoleHeader:      styled(tc.HeaderFG, tc.HeaderBG).Bold(true),
			render.RoleCell:        styled(tc.CellFG, ""),
			render.RoleSelected:    styled(tc.SelectedFG, tc.SelectedBG).Bold(true),
			render.RoleSelectedRow: styled(tc.CellFG, tc.SelectedRowBG),
			render.RoleRowNumber:   styled(tc.RowNumberFG, ""),
			render.RoleSeparator:   styled(tc.SeparatorFG, ""),
			render.RoleStatus:      styled(tc.StatusFG, tc.StatusBG),
			render.RoleWarning:     styled(tc.WarningFG, tc.StatusBG).Bold(true),
			render.RoleMatch:       styled(tc.MatchFG, tc.MatchBG),
		},
		Status:    styled(tc.StatusFG, tc.StatusBG),
		Spinner:   styled(tc.HeaderFG, ""),
		HelpKey:   styled(tc.HelpKey, "").Bold(true),
		HelpValue: styled(tc.HelpValue, ""),
	}
	if mono {
		t.styles[render.RoleSelected] = lipgloss.NewStyle().Reverse(true)
		t.styles[render.RoleMatch] = lipgloss.NewStyle().Underline(true)
		t.styles[render.RoleSelectedRow] = lipgloss.NewStyle()
	}
	return t
}

// ThemeFromConfig selects the configured theme, or the named override when
// override is non-empty.
func ThemeFromConfig(cfg config.File, override string, noColor bool) (Theme, error) {
	if override = strings.TrimSpace(override); override != "" {
		cfg.UI.Theme = override
	}
	if len(cfg.UI.Themes) == 0 {
		return NewTheme("default", fallbackTheme(), noColor), nil
	}
	name, tc, err := cfg.SelectedTheme()
	if err != nil {
		return Theme{}, fmt.Errorf("theme: %w", err)
	}
	return NewTheme(name, tc, noColor), nil
}

// applyHelpStyles colors a help model with the theme.
func (t Theme) applyHelpStyles(h *help.Model) {
	h.Styles.ShortKey = t.HelpKey
	h.Styles.FullKey = t.HelpKey
	h.Styles.ShortDesc = t.HelpValue
	h.Styles.FullDesc = t.HelpValue
	h.Styles.ShortSeparator = t.HelpValue
	h.Styles.FullSeparator = t.HelpValue
	h.Styles.Ellipsis = t.HelpValue
}
