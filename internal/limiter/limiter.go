// Package limiter narrows a parsed table to a window of data rows, as selected
// by the --limit, --offset and --tail flags.
package limiter

import (
	"fmt"

	"github.com/oakwood-commons/csvx/internal/record"
)

// Config holds the row-limiting parameters.
type Config struct {
	Limit  int // Show only this many rows (0 = unlimited)
	Offset int // Skip the first N rows (0 = no skip)
	Tail   int // Show only the last N rows (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations and returns an error if invalid.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Window returns the half-open row range [start, end) selected out of n rows.
func (c Config) Window(n int) (start, end int) {
	if n < 0 {
		n = 0
	}
	if c.Tail > 0 {
		return max(n-c.Tail, 0), n
	}

	start = min(c.Offset, n)
	end = n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return max(start, 0), end
}

// Apply returns the selected window of the table. Row numbers in the result
// still refer to the source document. The input table is returned unchanged
// when no limiting is configured.
func (c Config) Apply(t *record.Table) *record.Table {
	if t == nil || !c.IsActive() {
		return t
	}
	start, end := c.Window(t.RowCount())
	return t.Slice(start, end)
}

// Describe returns a short human-readable summary of the window applied to a
// table of total rows, or "" when limiting is inactive.
func (c Config) Describe(total int) string {
	if !c.IsActive() {
		return ""
	}
	start, end := c.Window(total)
	if start == end {
		return fmt.Sprintf("no rows of %d", total)
	}
	return fmt.Sprintf("rows %d-%d of %d", start+1, end, total)
}
