package config

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/csvx/internal/csvparse"
	"github.com/oakwood-commons/csvx/internal/layout"
	"github.com/oakwood-commons/csvx/pkg/loader"
)

// Merge layers override on top of base. Set fields in override win; themes
// are merged per color so a user theme may name only the colors it changes.
func Merge(base, override File) File {
	out := base

	setString(&out.Parser.Delimiter, override.Parser.Delimiter)
	setBool(&out.Parser.Header, override.Parser.Header)
	setString(&out.Parser.OnLimit, override.Parser.OnLimit)
	setInt(&out.Parser.MaxWarnings, override.Parser.MaxWarnings)
	setInt(&out.Parser.Limits.MaxInputBytes, override.Parser.Limits.MaxInputBytes)
	setInt(&out.Parser.Limits.MaxRows, override.Parser.Limits.MaxRows)
	setInt(&out.Parser.Limits.MaxColumns, override.Parser.Limits.MaxColumns)
	setInt(&out.Parser.Limits.MaxCellBytes, override.Parser.Limits.MaxCellBytes)

	setInt(&out.Layout.MinColumnWidth, override.Layout.MinColumnWidth)
	setInt(&out.Layout.MaxColumnWidth, override.Layout.MaxColumnWidth)
	setInt(&out.Layout.SampleRows, override.Layout.SampleRows)
	setInt(&out.Layout.SeparatorWidth, override.Layout.SeparatorWidth)
	setBool(&out.Layout.RowNumbers, override.Layout.RowNumbers)

	if strings.TrimSpace(override.UI.Theme) != "" {
		out.UI.Theme = strings.TrimSpace(override.UI.Theme)
	}
	if len(base.UI.Themes) > 0 || len(override.UI.Themes) > 0 {
		themes := make(map[string]ThemeConfig, len(base.UI.Themes)+len(override.UI.Themes))
		for name, th := range base.UI.Themes {
			themes[name] = th
		}
		for name, th := range override.UI.Themes {
			themes[name] = MergeTheme(themes[name], th)
		}
		out.UI.Themes = themes
	}
	return out
}

// MergeTheme copies every non-empty color of override onto base.
func MergeTheme(base, override ThemeConfig) ThemeConfig {
	out := base
	apply := func(src ColorValue, dst *ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	apply(override.HeaderFG, &out.HeaderFG)
	apply(override.HeaderBG, &out.HeaderBG)
	apply(override.CellFG, &out.CellFG)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.SelectedBG, &out.SelectedBG)
	apply(override.SelectedRowBG, &out.SelectedRowBG)
	apply(override.RowNumberFG, &out.RowNumberFG)
	apply(override.SeparatorFG, &out.SeparatorFG)
	apply(override.StatusFG, &out.StatusFG)
	apply(override.StatusBG, &out.StatusBG)
	apply(override.WarningFG, &out.WarningFG)
	apply(override.MatchFG, &out.MatchFG)
	apply(override.MatchBG, &out.MatchBG)
	apply(override.HelpKey, &out.HelpKey)
	apply(override.HelpValue, &out.HelpValue)
	return out
}

func setString(dst **string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		v := strings.TrimSpace(*src)
		*dst = &v
	}
}

func setInt(dst **int, src *int) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func setBool(dst **bool, src *bool) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// LoaderOptions converts the parser section into loader options. Unset
// fields keep the csvparse defaults.
func (f File) LoaderOptions() (loader.Options, error) {
	opts := loader.Options{Parser: csvparse.DefaultOptions()}
	p := f.Parser

	delim := ""
	if p.Delimiter != nil {
		delim = *p.Delimiter
	}
	if strings.EqualFold(delim, DelimiterAuto) {
		opts.AutoDelimiter = true
	} else {
		d, err := csvparse.ParseDelimiter(delim)
		if err != nil {
			return opts, fmt.Errorf("parser.delimiter: %w", err)
		}
		opts.Parser.Delimiter = d
	}
	if p.Header != nil {
		opts.Parser.HasHeader = *p.Header
	}
	if p.MaxWarnings != nil {
		if *p.MaxWarnings < 1 {
			return opts, fmt.Errorf("parser.max_warnings must be at least 1, got %d", *p.MaxWarnings)
		}
		opts.Parser.MaxWarnings = *p.MaxWarnings
	}

	limits := []struct {
		name string
		src  *int
		dst  *int
	}{
		{"max_input_bytes", p.Limits.MaxInputBytes, &opts.Parser.Limits.MaxInputBytes},
		{"max_rows", p.Limits.MaxRows, &opts.Parser.Limits.MaxRows},
		{"max_columns", p.Limits.MaxColumns, &opts.Parser.Limits.MaxColumns},
		{"max_cell_bytes", p.Limits.MaxCellBytes, &opts.Parser.Limits.MaxCellBytes},
	}
	for _, l := range limits {
		if l.src == nil {
			continue
		}
		if *l.src < 1 {
			return opts, fmt.Errorf("parser.limits.%s must be positive, got %d", l.name, *l.src)
		}
		*l.dst = *l.src
	}
	return opts, opts.Parser.Validate()
}

// OnLimitPolicy returns the parsed on_limit value.
func (f File) OnLimitPolicy() (OnLimit, error) {
	if f.Parser.OnLimit == nil {
		return OnLimitAbort, nil
	}
	return ParseOnLimit(*f.Parser.OnLimit)
}

// LayoutConfig converts the layout section, falling back to layout defaults.
func (f File) LayoutConfig() (layout.Config, error) {
	cfg := layout.DefaultConfig()
	l := f.Layout
	if l.MinColumnWidth != nil {
		cfg.MinWidth = *l.MinColumnWidth
	}
	if l.MaxColumnWidth != nil {
		cfg.MaxWidth = *l.MaxColumnWidth
	}
	if l.SampleRows != nil {
		cfg.SampleRows = *l.SampleRows
	}
	if l.SeparatorWidth != nil {
		cfg.SeparatorWidth = *l.SeparatorWidth
	}
	if l.RowNumbers != nil {
		cfg.RowNumbers = *l.RowNumbers
	}
	switch {
	case cfg.MinWidth < 1:
		return cfg, fmt.Errorf("layout.min_column_width must be at least 1, got %d", cfg.MinWidth)
	case cfg.MaxWidth < cfg.MinWidth:
		return cfg, fmt.Errorf("layout.max_column_width (%d) is below min_column_width (%d)", cfg.MaxWidth, cfg.MinWidth)
	case cfg.SampleRows < 0:
		return cfg, fmt.Errorf("layout.sample_rows cannot be negative, got %d", cfg.SampleRows)
	case cfg.SeparatorWidth < 0:
		return cfg, fmt.Errorf("layout.separator_width cannot be negative, got %d", cfg.SeparatorWidth)
	}
	return cfg, nil
}

// Validate reports every setting that cannot be applied.
func (f File) Validate() error {
	if _, err := f.LoaderOptions(); err != nil {
		return err
	}
	if _, err := f.OnLimitPolicy(); err != nil {
		return fmt.Errorf("parser.on_limit: %w", err)
	}
	if _, err := f.LayoutConfig(); err != nil {
		return err
	}
	if name := f.UI.Theme; name != "" {
		if _, ok := f.UI.Themes[name]; !ok {
			return fmt.Errorf("ui.theme: unknown theme %q (available: %s)", name, strings.Join(f.ThemeNames(), ", "))
		}
	}
	return nil
}
