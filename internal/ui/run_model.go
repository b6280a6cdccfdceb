package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	Model ModelOptions
	// Width and Height force the window size; 0 auto-detects.
	Width, Height int
	// ProgramOptions are passed to tea.NewProgram (custom input/output).
	ProgramOptions []tea.ProgramOption
	// OnRelease runs once the terminal has been restored, before Run
	// returns. Deferred log output is flushed here.
	OnRelease func()
}

// Session owns one Bubble Tea program: raw mode, the alternate screen and
// the event loop.
type Session struct {
	opts  RunOptions
	model *Model
}

// NewSession prepares a session. Nothing touches the terminal until Run.
func NewSession(opts RunOptions) *Session {
	opts.Model.AltScreen = true
	return &Session{opts: opts}
}

// Model returns the model of the last Run, or nil.
func (s *Session) Model() *Model { return s.model }

// Run blocks until the user quits or loading fails. The program restores the
// terminal on every return path, recovered panics included; errors are
// returned only after that, and after OnRelease.
func (s *Session) Run(ctx context.Context) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	m := NewModel(ctx, s.opts.Model)
	s.model = m

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, s.opts.ProgramOptions...)
	if s.opts.Width > 0 || s.opts.Height > 0 {
		runW, runH := forcedSize(s.opts.Width, s.opts.Height)
		m.app.Resize(runW, m.tableHeight(runH))
		opts = append(opts, tea.WithWindowSize(runW, runH))
	}

	prog := tea.NewProgram(m, opts...)
	final, runErr := prog.Run()
	if s.opts.OnRelease != nil {
		s.opts.OnRelease()
	}

	if runErr != nil {
		switch {
		case errors.Is(runErr, tea.ErrInterrupted):
			return nil
		case errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(runErr, tea.ErrProgramPanic):
			return fmt.Errorf("terminal session crashed: %w", runErr)
		}
		return fmt.Errorf("terminal: %w", runErr)
	}
	if fm, ok := final.(*Model); ok && fm != nil && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

// forcedSize fills a missing dimension from the terminal, then from the
// 80x24 default.
func forcedSize(width, height int) (int, int) {
	runW, runH := width, height
	if runW <= 0 || runH <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if runW <= 0 {
				runW = w
			}
			if runH <= 0 {
				runH = h
			}
		}
	}
	if runW <= 0 {
		runW = DefaultWidth
	}
	if runH <= 0 {
		runH = DefaultHeight
	}
	return runW, runH
}
