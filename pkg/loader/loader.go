// Package loader reads CSV input from a file or stream and hands it to the
// parser. Reads are bounded so that a huge or endless input cannot exhaust
// memory.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oakwood-commons/csvx/internal/csvparse"
	"github.com/oakwood-commons/csvx/pkg/logger"
)

// StdinName is the display name used for input read from standard input.
const StdinName = "<stdin>"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Source names where the input comes from. When Path is empty or "-", Reader
// is used.
type Source struct {
	Path   string
	Reader io.Reader
}

// Name returns a short label for the source, suitable for a status line.
func (s Source) Name() string {
	if s.IsStdin() {
		return StdinName
	}
	return filepath.Base(s.Path)
}

// IsStdin reports whether the source is a stream rather than a named file.
func (s Source) IsStdin() bool {
	return s.Path == "" || s.Path == "-"
}

// Options configures Load.
type Options struct {
	Parser csvparse.Options
	// AutoDelimiter picks the delimiter from the file extension or the first
	// line instead of Parser.Delimiter.
	AutoDelimiter bool
}

// ReadAll reads at most maxBytes from r. When r holds more, the first
// maxBytes bytes are returned together with an input-size *csvparse.LimitError.
func ReadAll(r io.Reader, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = csvparse.DefaultMaxInputBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBytes {
		return data[:maxBytes], &csvparse.LimitError{Kind: csvparse.LimitInputBytes, Limit: maxBytes}
	}
	return data, nil
}

// ReadFile opens path and reads it with ReadAll.
func ReadFile(path string, maxBytes int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if info, statErr := f.Stat(); statErr == nil && info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return ReadAll(f, maxBytes)
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// DetectDelimiter guesses the field delimiter. Known extensions win; otherwise
// the first line is scanned (outside quotes) for the most frequent of
// comma, semicolon, tab and pipe. Ties and misses fall back to comma.
func DetectDelimiter(path string, data []byte) byte {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	case ".psv":
		return '|'
	}

	candidates := []byte{',', ';', '\t', '|'}
	counts := make(map[byte]int, len(candidates))
	inQuotes := false
scan:
	for _, c := range data {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case c == '\n' || c == '\r':
			break scan
		default:
			counts[c]++
		}
	}

	best, bestCount := byte(','), 0
	for _, c := range candidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// Load reads the source and parses it. On a limit violation the partial
// result is returned together with the *csvparse.LimitError so callers can
// choose to show the rows that were read.
func Load(ctx context.Context, src Source, opts Options) (*csvparse.Result, error) {
	lgr := logger.FromContext(ctx).WithValues(logger.SourceKey, src.Name())
	start := time.Now()

	maxBytes := opts.Parser.Limits.MaxInputBytes
	var (
		data    []byte
		readErr error
	)
	if src.IsStdin() {
		if src.Reader == nil {
			return nil, fmt.Errorf("no input: pass a file or pipe data on stdin")
		}
		data, readErr = ReadAll(src.Reader, maxBytes)
	} else {
		data, readErr = ReadFile(src.Path, maxBytes)
	}

	var inputLimit *csvparse.LimitError
	if readErr != nil {
		le, ok := readErr.(*csvparse.LimitError)
		if !ok {
			return nil, fmt.Errorf("reading %s: %w", src.Name(), readErr)
		}
		inputLimit = le
	}
	lgr.V(1).Info("input read", "bytes", len(data), "truncated", inputLimit != nil)

	data = StripBOM(data)
	parseOpts := opts.Parser
	if opts.AutoDelimiter {
		parseOpts.Delimiter = DetectDelimiter(src.Path, data)
		lgr.V(1).Info("delimiter detected", "delimiter", string(parseOpts.Delimiter))
	}

	if inputLimit != nil {
		parseOpts.Truncated = true
		parseOpts.Limits.MaxInputBytes = inputLimit.Limit
	}

	res, err := csvparse.Parse(ctx, data, parseOpts)
	if err != nil && res == nil {
		return nil, err
	}

	lgr.V(1).Info("parse finished",
		"rows", res.Table.RowCount(),
		"columns", res.Table.ColumnCount(),
		"warnings", res.WarningCount,
		"partial", res.Partial,
		"elapsed", time.Since(start).String(),
	)
	for _, w := range res.Warnings {
		lgr.V(1).Info("parse warning", "line", w.Line, "row", w.Row, "kind", w.Kind.String(), "detail", w.Detail)
	}
	if dropped := res.WarningCount - len(res.Warnings); dropped > 0 {
		lgr.V(1).Info("parse warnings not listed", "count", dropped)
	}
	return res, err
}
