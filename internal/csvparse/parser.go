// Package csvparse is a single-pass, fault-tolerant CSV tokenizer that builds
// a record.Table. Malformed input produces warnings, never a crash; only the
// configured hard limits stop a parse.
package csvparse

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/oakwood-commons/csvx/internal/record"
)

// Result is a parsed table plus the non-fatal issues found while building it.
type Result struct {
	Table *record.Table
	// Warnings holds at most Options.MaxWarnings entries.
	Warnings []Warning
	// WarningCount is the total number of warnings, including dropped ones.
	WarningCount int
	// Partial is set when a limit stopped the parse; Table holds the rows
	// completed before the limit.
	Partial bool
	// Limit is the limit that stopped the parse, if any.
	Limit *LimitError
}

// Parse tokenizes data into a Table. The returned error is nil, a
// *LimitError (with a non-nil partial Result), an options error, or the
// context's error when parsing is cancelled (with a nil Result).
func Parse(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Limits = opts.Limits.withDefaults()

	if len(data) > opts.Limits.MaxInputBytes {
		data = data[:opts.Limits.MaxInputBytes]
		opts.Truncated = true
	}
	var inputErr *LimitError
	if opts.Truncated {
		inputErr = &LimitError{Kind: LimitInputBytes, Limit: opts.Limits.MaxInputBytes}
	}

	p := newParser(data, opts)
	err := p.run(ctx)
	if err != nil {
		var le *LimitError
		if errors.As(err, &le) {
			res := p.result()
			res.Partial = true
			res.Limit = le
			return res, le
		}
		return nil, err
	}
	res := p.result()
	if inputErr != nil {
		res.Partial = true
		res.Limit = inputErr
		return res, inputErr
	}
	return res, nil
}

type parser struct {
	data   []byte
	pos    int
	line   int
	delim  byte
	quote  byte
	limits Limits
	opts   Options

	field      []byte
	fields     []string
	fieldCount int
	recordLine int
	// terminated reports whether the last record ended on a line break.
	terminated bool

	header     record.Row
	headerDone bool
	rows       []record.Row
	cols       int
	colsKnown  bool

	warnings     []Warning
	warningCount int
}

// checkpoint is the table state before a record, used to drop a record cut
// off by a truncated input.
type checkpoint struct {
	rows         int
	header       record.Row
	headerDone   bool
	cols         int
	colsKnown    bool
	warnings     int
	warningCount int
}

func (p *parser) checkpoint() checkpoint {
	return checkpoint{
		rows:         len(p.rows),
		header:       p.header,
		headerDone:   p.headerDone,
		cols:         p.cols,
		colsKnown:    p.colsKnown,
		warnings:     len(p.warnings),
		warningCount: p.warningCount,
	}
}

func (p *parser) restore(c checkpoint) {
	p.rows = p.rows[:c.rows]
	p.header = c.header
	p.headerDone = c.headerDone
	p.cols = c.cols
	p.colsKnown = c.colsKnown
	p.warnings = p.warnings[:c.warnings]
	p.warningCount = c.warningCount
}

func newParser(data []byte, opts Options) *parser {
	return &parser{
		data:   data,
		line:   1,
		delim:  opts.delimiter(),
		quote:  opts.quote(),
		limits: opts.Limits,
		opts:   opts,
		field:  make([]byte, 0, min(64, opts.Limits.MaxCellBytes)),
		fields: make([]string, 0, 16),
	}
}

func (p *parser) result() *Result {
	return &Result{
		Table:        record.NewTable(p.header, p.rows, p.cols),
		Warnings:     p.warnings,
		WarningCount: p.warningCount,
	}
}

func (p *parser) run(ctx context.Context) error {
	interval := ContextCheckInterval
	if interval <= 0 {
		interval = 1
	}
	records := 0
	for p.pos < len(p.data) {
		if p.skipBlankLine() {
			continue
		}
		before := p.checkpoint()
		if err := p.readRecord(); err != nil {
			return err
		}
		if p.opts.Truncated && !p.terminated && p.pos >= len(p.data) {
			// the input was cut inside this record
			p.restore(before)
			break
		}
		records++
		if records%interval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

// skipBlankLine consumes a completely empty line.
func (p *parser) skipBlankLine() bool {
	switch {
	case p.data[p.pos] == '\n':
		p.pos++
	case p.data[p.pos] == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n':
		p.pos += 2
	default:
		return false
	}
	p.line++
	return true
}

// currentRow is the data row index the record being read will occupy.
func (p *parser) currentRow() int {
	if p.opts.HasHeader && !p.headerDone {
		return HeaderRow
	}
	return len(p.rows)
}

func (p *parser) readRecord() error {
	p.fields = p.fields[:0]
	p.fieldCount = 0
	p.recordLine = p.line
	p.terminated = false
	for {
		last, err := p.readField()
		if err != nil {
			return err
		}
		if last {
			break
		}
	}
	return p.endRecord()
}

// readField consumes one field and its terminator. last reports whether the
// field closed the record (line break or end of input).
func (p *parser) readField() (last bool, err error) {
	p.field = p.field[:0]
	if p.pos < len(p.data) && p.data[p.pos] == p.quote {
		p.pos++
		last, err = p.readQuoted()
	} else {
		last, err = p.readUnquoted()
	}
	if err != nil {
		return false, err
	}
	return last, p.endField()
}

func (p *parser) readUnquoted() (bool, error) {
	warnedQuote := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == p.delim:
			p.pos++
			return false, nil
		case c == '\n':
			p.pos++
			p.line++
			p.terminated = true
			return true, nil
		case c == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n':
			p.pos += 2
			p.line++
			p.terminated = true
			return true, nil
		case c == p.quote && !warnedQuote:
			warnedQuote = true
			p.warn(WarnBareQuote, fmt.Sprintf("field %d", p.fieldCount+1))
		}
		if err := p.appendByte(c); err != nil {
			return false, err
		}
		p.pos++
	}
	return true, nil
}

func (p *parser) readQuoted() (bool, error) {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == p.quote:
			if p.pos+1 < len(p.data) && p.data[p.pos+1] == p.quote {
				if err := p.appendByte(p.quote); err != nil {
					return false, err
				}
				p.pos += 2
				continue
			}
			p.pos++
			return p.afterClosingQuote()
		case c == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n':
			if err := p.appendByte('\n'); err != nil {
				return false, err
			}
			p.pos += 2
			p.line++
			continue
		case c == '\n':
			p.line++
		}
		if err := p.appendByte(c); err != nil {
			return false, err
		}
		p.pos++
	}
	p.warn(WarnUnterminatedQuote, fmt.Sprintf("field %d", p.fieldCount+1))
	return true, nil
}

// afterClosingQuote consumes the field terminator. Anything else is kept as
// literal field text.
func (p *parser) afterClosingQuote() (bool, error) {
	warned := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == p.delim:
			p.pos++
			return false, nil
		case c == '\n':
			p.pos++
			p.line++
			p.terminated = true
			return true, nil
		case c == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n':
			p.pos += 2
			p.line++
			p.terminated = true
			return true, nil
		}
		if !warned {
			warned = true
			p.warn(WarnTextAfterQuote, fmt.Sprintf("field %d", p.fieldCount+1))
		}
		if err := p.appendByte(c); err != nil {
			return false, err
		}
		p.pos++
	}
	return true, nil
}

func (p *parser) appendByte(c byte) error {
	if len(p.field) >= p.limits.MaxCellBytes {
		return p.limitError(LimitCellBytes, p.limits.MaxCellBytes)
	}
	if len(p.field) == cap(p.field) {
		// grow by hand so capacity never passes MaxCellBytes
		grown := make([]byte, len(p.field), min(2*cap(p.field)+1, p.limits.MaxCellBytes))
		copy(grown, p.field)
		p.field = grown
	}
	p.field = append(p.field, c)
	return nil
}

func (p *parser) endField() error {
	p.fieldCount++
	if p.fieldCount > p.limits.MaxColumns {
		return p.limitError(LimitColumns, p.limits.MaxColumns)
	}
	keep := p.limits.MaxColumns
	if p.colsKnown {
		keep = p.cols
	}
	if len(p.fields) < keep {
		p.fields = append(p.fields, p.fieldString())
	}
	return nil
}

// fieldString converts the field buffer to a string, replacing each invalid
// UTF-8 byte with U+FFFD.
func (p *parser) fieldString() string {
	if utf8.Valid(p.field) {
		return string(p.field)
	}
	out := make([]byte, 0, len(p.field)+8)
	for i := 0; i < len(p.field); {
		r, size := utf8.DecodeRune(p.field[i:])
		if r == utf8.RuneError && size == 1 {
			p.warn(WarnInvalidEncoding, fmt.Sprintf("field %d, byte 0x%02x", p.fieldCount, p.field[i]))
			out = utf8.AppendRune(out, utf8.RuneError)
			i++
			continue
		}
		out = append(out, p.field[i:i+size]...)
		i += size
	}
	return string(out)
}

func (p *parser) endRecord() error {
	if !p.colsKnown {
		p.cols = p.fieldCount
		p.colsKnown = true
	}
	if p.opts.HasHeader && !p.headerDone {
		p.header = record.NewRow(p.fields, p.cols)
		p.headerDone = true
		return nil
	}
	if len(p.rows) >= p.limits.MaxRows {
		return p.limitError(LimitRows, p.limits.MaxRows)
	}
	if p.fieldCount != p.cols {
		p.warn(WarnFieldCount, fmt.Sprintf("expected %d fields, got %d", p.cols, p.fieldCount))
	}
	p.rows = append(p.rows, record.NewRow(p.fields, p.cols))
	return nil
}

func (p *parser) warn(kind WarningKind, detail string) {
	p.warningCount++
	if len(p.warnings) >= p.opts.maxWarnings() {
		return
	}
	p.warnings = append(p.warnings, Warning{
		Row:    p.currentRow(),
		Line:   p.recordLine,
		Kind:   kind,
		Detail: detail,
	})
}

func (p *parser) limitError(kind LimitKind, limit int) *LimitError {
	return &LimitError{Kind: kind, Limit: limit, Line: p.line, Row: len(p.rows)}
}
