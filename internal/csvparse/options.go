package csvparse

import (
	"fmt"
	"unicode/utf8"
)

// Default hard limits. They bound memory use for hostile or accidental input.
const (
	DefaultMaxInputBytes = 256 << 20 // 256 MiB
	DefaultMaxRows       = 5_000_000
	DefaultMaxColumns    = 4096
	DefaultMaxCellBytes  = 1 << 20 // 1 MiB
	DefaultMaxWarnings   = 1000
)

// ContextCheckInterval is how often, in records, Parse checks its context
// for cancellation.
var ContextCheckInterval = 1024

// Limits are the hard bounds enforced while parsing. Zero values fall back to
// the defaults.
type Limits struct {
	MaxInputBytes int `yaml:"max_input_bytes" toml:"max_input_bytes"`
	MaxRows       int `yaml:"max_rows" toml:"max_rows"`
	MaxColumns    int `yaml:"max_columns" toml:"max_columns"`
	MaxCellBytes  int `yaml:"max_cell_bytes" toml:"max_cell_bytes"`
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		MaxInputBytes: DefaultMaxInputBytes,
		MaxRows:       DefaultMaxRows,
		MaxColumns:    DefaultMaxColumns,
		MaxCellBytes:  DefaultMaxCellBytes,
	}
}

// withDefaults fills zero or negative fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxInputBytes <= 0 {
		l.MaxInputBytes = d.MaxInputBytes
	}
	if l.MaxRows <= 0 {
		l.MaxRows = d.MaxRows
	}
	if l.MaxColumns <= 0 {
		l.MaxColumns = d.MaxColumns
	}
	if l.MaxCellBytes <= 0 {
		l.MaxCellBytes = d.MaxCellBytes
	}
	return l
}

// Options configures Parse.
type Options struct {
	// Delimiter separates fields. Default ','.
	Delimiter byte
	// Quote wraps fields containing delimiters, quotes or newlines. Default '"'.
	Quote byte
	// HasHeader treats the first record as the header row.
	HasHeader bool
	// Limits bounds the size of the parsed table.
	Limits Limits
	// MaxWarnings caps how many warnings are kept. The count stays exact.
	MaxWarnings int
	// Truncated marks data as a prefix cut from a longer input. A final
	// record without a line break is dropped and Parse reports an
	// input-size *LimitError.
	Truncated bool
}

// DefaultOptions returns comma-delimited, header-first options with the
// default limits.
func DefaultOptions() Options {
	return Options{
		Delimiter:   ',',
		Quote:       '"',
		HasHeader:   true,
		Limits:      DefaultLimits(),
		MaxWarnings: DefaultMaxWarnings,
	}
}

// Validate reports option combinations that cannot be tokenized.
func (o Options) Validate() error {
	d, q := o.delimiter(), o.quote()
	switch {
	case d >= utf8.RuneSelf:
		return fmt.Errorf("delimiter %q must be a single ASCII character", d)
	case d == '\n' || d == '\r':
		return fmt.Errorf("delimiter cannot be a line break")
	case q >= utf8.RuneSelf:
		return fmt.Errorf("quote %q must be a single ASCII character", q)
	case q == '\n' || q == '\r':
		return fmt.Errorf("quote cannot be a line break")
	case d == q:
		return fmt.Errorf("delimiter and quote must differ (both %q)", d)
	}
	return nil
}

func (o Options) delimiter() byte {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o Options) quote() byte {
	if o.Quote == 0 {
		return '"'
	}
	return o.Quote
}

func (o Options) maxWarnings() int {
	if o.MaxWarnings <= 0 {
		return DefaultMaxWarnings
	}
	return o.MaxWarnings
}

// ParseDelimiter converts a user-supplied delimiter name or character into a
// byte. Accepts a single ASCII character or one of "comma", "tab", "\t",
// "semicolon", "pipe", "space".
func ParseDelimiter(s string) (byte, error) {
	switch s {
	case "", "comma", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "semicolon", ";":
		return ';', nil
	case "pipe", "|":
		return '|', nil
	case "space", " ":
		return ' ', nil
	}
	if len(s) == 1 && s[0] < utf8.RuneSelf {
		return s[0], nil
	}
	return 0, fmt.Errorf("invalid delimiter %q: expected a single ASCII character or comma|tab|semicolon|pipe|space", s)
}
