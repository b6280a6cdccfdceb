package csvparse

import (
	"errors"
	"fmt"
)

// ErrLimitExceeded matches every *LimitError via errors.Is.
var ErrLimitExceeded = errors.New("csvparse: limit exceeded")

// LimitKind names the hard limit that was hit.
type LimitKind int

const (
	LimitInputBytes LimitKind = iota + 1
	LimitRows
	LimitColumns
	LimitCellBytes
)

func (k LimitKind) String() string {
	switch k {
	case LimitInputBytes:
		return "input size"
	case LimitRows:
		return "row count"
	case LimitColumns:
		return "column count"
	case LimitCellBytes:
		return "cell size"
	default:
		return "unknown"
	}
}

// LimitError is returned when the input exceeds one of the configured Limits.
// Parsing stops at the violation; the accompanying Result holds the rows that
// were complete before it.
type LimitError struct {
	Kind  LimitKind
	Limit int
	// Line is the 1-based input line where the limit was hit (0 for input size).
	Line int
	// Row is the 0-based data row being built when the limit was hit.
	Row int
}

// Error formats the limit, its value and the location.
func (e *LimitError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line == 0 {
		return fmt.Sprintf("csvparse: %s limit exceeded (max %d)", e.Kind, e.Limit)
	}
	return fmt.Sprintf("csvparse: %s limit exceeded on line %d (max %d)", e.Kind, e.Line, e.Limit)
}

// Is lets errors.Is(err, ErrLimitExceeded) match any LimitError.
func (e *LimitError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// WarningKind classifies a non-fatal anomaly.
type WarningKind int

const (
	WarnFieldCount WarningKind = iota + 1
	WarnUnterminatedQuote
	WarnInvalidEncoding
	WarnBareQuote
	WarnTextAfterQuote
)

func (k WarningKind) String() string {
	switch k {
	case WarnFieldCount:
		return "field count mismatch"
	case WarnUnterminatedQuote:
		return "unterminated quote at EOF"
	case WarnInvalidEncoding:
		return "invalid encoding"
	case WarnBareQuote:
		return "bare quote"
	case WarnTextAfterQuote:
		return "text after closing quote"
	default:
		return "unknown"
	}
}

// HeaderRow is the Row value of warnings raised while reading the header.
const HeaderRow = -1

// Warning is a non-fatal anomaly found while parsing.
type Warning struct {
	// Row is the 0-based data row index, or HeaderRow.
	Row int
	// Line is the 1-based input line where the record started.
	Line   int
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	where := fmt.Sprintf("row %d", w.Row+1)
	if w.Row == HeaderRow {
		where = "header"
	}
	if w.Detail == "" {
		return fmt.Sprintf("line %d (%s): %s", w.Line, where, w.Kind)
	}
	return fmt.Sprintf("line %d (%s): %s: %s", w.Line, where, w.Kind, w.Detail)
}
