// Package config holds the csvx configuration schema, the embedded defaults
// and the merge rules applied when a user file is layered on top of them.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration layout. Pointer fields distinguish
// "unset" from a zero value so a user file only overrides what it names.
type File struct {
	Parser ParserConfig `yaml:"parser,omitempty" toml:"parser,omitempty"`
	Layout LayoutConfig `yaml:"layout,omitempty" toml:"layout,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty" toml:"ui,omitempty"`
}

// ParserConfig controls tokenizing and the hard limits.
type ParserConfig struct {
	Delimiter   *string      `yaml:"delimiter,omitempty" toml:"delimiter,omitempty" yamlcomment:"Field delimiter: auto, comma, tab, semicolon, pipe, space or one ASCII character"`
	Header      *bool        `yaml:"header,omitempty" toml:"header,omitempty" yamlcomment:"Treat the first record as the header row"`
	OnLimit     *string      `yaml:"on_limit,omitempty" toml:"on_limit,omitempty" yamlcomment:"What to do when a limit is hit: abort or truncate"`
	MaxWarnings *int         `yaml:"max_warnings,omitempty" toml:"max_warnings,omitempty" yamlcomment:"Maximum number of parse warnings kept for display"`
	Limits      LimitsConfig `yaml:"limits,omitempty" toml:"limits,omitempty"`
}

// LimitsConfig mirrors csvparse.Limits with optional fields.
type LimitsConfig struct {
	MaxInputBytes *int `yaml:"max_input_bytes,omitempty" toml:"max_input_bytes,omitempty" yamlcomment:"Largest input accepted, in bytes"`
	MaxRows       *int `yaml:"max_rows,omitempty" toml:"max_rows,omitempty" yamlcomment:"Largest number of data rows"`
	MaxColumns    *int `yaml:"max_columns,omitempty" toml:"max_columns,omitempty" yamlcomment:"Largest number of fields in any record"`
	MaxCellBytes  *int `yaml:"max_cell_bytes,omitempty" toml:"max_cell_bytes,omitempty" yamlcomment:"Largest single cell, in bytes"`
}

// LayoutConfig mirrors layout.Config with optional fields.
type LayoutConfig struct {
	MinColumnWidth *int  `yaml:"min_column_width,omitempty" toml:"min_column_width,omitempty" yamlcomment:"Narrowest column, in cells"`
	MaxColumnWidth *int  `yaml:"max_column_width,omitempty" toml:"max_column_width,omitempty" yamlcomment:"Widest column, in cells"`
	SampleRows     *int  `yaml:"sample_rows,omitempty" toml:"sample_rows,omitempty" yamlcomment:"Leading rows sampled for column widths"`
	SeparatorWidth *int  `yaml:"separator_width,omitempty" toml:"separator_width,omitempty" yamlcomment:"Blank cells between columns"`
	RowNumbers     *bool `yaml:"row_numbers,omitempty" toml:"row_numbers,omitempty" yamlcomment:"Show the row number gutter"`
}

// UIConfig selects and defines the color themes.
type UIConfig struct {
	Theme  string                 `yaml:"theme,omitempty" toml:"theme,omitempty" yamlcomment:"Theme name"`
	Themes map[string]ThemeConfig `yaml:"themes,omitempty" toml:"themes,omitempty"`
}

// ThemeConfig is a YAML-friendly theme (colors accept ints or strings).
type ThemeConfig struct {
	HeaderFG      ColorValue `yaml:"header_fg,omitempty" toml:"header_fg,omitempty" yamlcomment:"Header foreground"`
	HeaderBG      ColorValue `yaml:"header_bg,omitempty" toml:"header_bg,omitempty" yamlcomment:"Header background"`
	CellFG        ColorValue `yaml:"cell_fg,omitempty" toml:"cell_fg,omitempty" yamlcomment:"Cell text"`
	SelectedFG    ColorValue `yaml:"selected_fg,omitempty" toml:"selected_fg,omitempty" yamlcomment:"Selected cell foreground"`
	SelectedBG    ColorValue `yaml:"selected_bg,omitempty" toml:"selected_bg,omitempty" yamlcomment:"Selected cell background"`
	SelectedRowBG ColorValue `yaml:"selected_row_bg,omitempty" toml:"selected_row_bg,omitempty" yamlcomment:"Background of the rest of the selected row"`
	RowNumberFG   ColorValue `yaml:"row_number_fg,omitempty" toml:"row_number_fg,omitempty" yamlcomment:"Row number gutter"`
	SeparatorFG   ColorValue `yaml:"separator_fg,omitempty" toml:"separator_fg,omitempty" yamlcomment:"Header rule"`
	StatusFG      ColorValue `yaml:"status_fg,omitempty" toml:"status_fg,omitempty" yamlcomment:"Status line foreground"`
	StatusBG      ColorValue `yaml:"status_bg,omitempty" toml:"status_bg,omitempty" yamlcomment:"Status line background"`
	WarningFG     ColorValue `yaml:"warning_fg,omitempty" toml:"warning_fg,omitempty" yamlcomment:"Warnings and the degraded banner"`
	MatchFG       ColorValue `yaml:"match_fg,omitempty" toml:"match_fg,omitempty" yamlcomment:"Search match foreground"`
	MatchBG       ColorValue `yaml:"match_bg,omitempty" toml:"match_bg,omitempty" yamlcomment:"Search match background"`
	HelpKey       ColorValue `yaml:"help_key,omitempty" toml:"help_key,omitempty" yamlcomment:"Help key labels"`
	HelpValue     ColorValue `yaml:"help_value,omitempty" toml:"help_value,omitempty" yamlcomment:"Help descriptions"`
}

// ColorValue stores a color token (number or name) and marshals numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: s,
		}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}

// OnLimit is the policy applied when a parse hits a hard limit.
type OnLimit string

const (
	OnLimitAbort    OnLimit = "abort"
	OnLimitTruncate OnLimit = "truncate"
)

// ParseOnLimit accepts "abort" or "truncate" (case-insensitive, empty means abort).
func ParseOnLimit(s string) (OnLimit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(OnLimitAbort):
		return OnLimitAbort, nil
	case string(OnLimitTruncate):
		return OnLimitTruncate, nil
	}
	return "", fmt.Errorf("invalid on_limit %q: expected abort or truncate", s)
}

// DelimiterAuto asks the loader to detect the delimiter.
const DelimiterAuto = "auto"
