package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalDeviceNames(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in  string
		out string
	}{
		"windows": {in: "CONIN$", out: "CONOUT$"},
		"linux":   {in: "/dev/tty", out: "/dev/tty"},
		"darwin":  {in: "/dev/tty", out: "/dev/tty"},
		"freebsd": {in: "/dev/tty", out: "/dev/tty"},
	}

	for goos, expected := range tests {
		t.Run(goos, func(t *testing.T) {
			t.Parallel()

			in, out := terminalDeviceNames(goos)
			require.Equal(t, expected.in, in)
			require.Equal(t, expected.out, out)
		})
	}
}

func TestOpenTerminalDevices(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tty-in")
	out := filepath.Join(dir, "tty-out")
	require.NoError(t, os.WriteFile(in, nil, 0o600))
	require.NoError(t, os.WriteFile(out, nil, 0o600))

	input, output, err := openTerminalDevices(in, in)
	require.NoError(t, err)
	assert.Same(t, input, output, "one device serves both directions")
	require.NoError(t, input.Close())

	input, output, err = openTerminalDevices(in, out)
	require.NoError(t, err)
	assert.NotSame(t, input, output)
	require.NoError(t, input.Close())
	require.NoError(t, output.Close())
}

func TestOpenTerminalDevices_OutputFailureReturnsNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tty-in")
	require.NoError(t, os.WriteFile(in, nil, 0o600))

	input, output, err := openTerminalDevices(in, filepath.Join(dir, "missing", "tty-out"))
	require.Error(t, err)
	assert.Nil(t, input, "the input device is closed, not handed back")
	assert.Nil(t, output)

	_, _, err = openTerminalDevices(filepath.Join(dir, "missing", "tty-in"), in)
	require.Error(t, err)
}

func TestGetProgramOptions_PipedUsesTTYAndCleansUp(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return true }

	inFile, err := os.CreateTemp(t.TempDir(), "tty-in-*")
	require.NoError(t, err)
	outFile, err := os.CreateTemp(t.TempDir(), "tty-out-*")
	require.NoError(t, err)

	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return inFile, outFile, nil
	}
	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	opts, cleanup := getProgramOptions()
	require.NotNil(t, cleanup)
	require.Len(t, opts, 3, "input, output and the resize watcher")

	// A second close errors once cleanup has closed both handles.
	cleanup()
	require.Error(t, inFile.Close())
	require.Error(t, outFile.Close())
}

func TestGetProgramOptions_NoTerminalFallsBack(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return true }
	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return nil, nil, errors.New("no tty")
	}
	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	opts, cleanup := getProgramOptions()
	require.Nil(t, opts)
	require.NotPanics(t, cleanup)
}

func TestGetProgramOptions_NotPipedUsesDefaults(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return false }
	openTerminalIOFn = func() (*os.File, *os.File, error) {
		t.Fatal("terminal should not be reopened")
		return nil, nil, nil
	}
	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	opts, cleanup := getProgramOptions()
	require.NotNil(t, cleanup)
	require.Nil(t, opts)
	require.NotPanics(t, cleanup)
}

type fakeResizeTicker struct {
	ch <-chan time.Time
}

func (f *fakeResizeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeResizeTicker) Stop()               {}

func makePipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})
	return r, w
}

// stubResizeWatcher swaps the watcher's clock, size probe and sender, and
// returns the tick channel and the channel of sent messages.
func stubResizeWatcher(t *testing.T, sizes func(call int32) (int, int)) (chan time.Time, chan tea.WindowSizeMsg) {
	t.Helper()
	origTermGetSize := termGetSize
	origTicker := newResizeTicker
	origSend := sendWindowSize
	t.Cleanup(func() {
		termGetSize = origTermGetSize
		newResizeTicker = origTicker
		sendWindowSize = origSend
	})

	calls := atomic.Int32{}
	termGetSize = func(int) (int, int, error) {
		w, h := sizes(calls.Add(1))
		return w, h, nil
	}
	ticks := make(chan time.Time, 3)
	newResizeTicker = func(time.Duration) resizeTicker {
		return &fakeResizeTicker{ch: ticks}
	}
	msgs := make(chan tea.WindowSizeMsg, 3)
	sendWindowSize = func(_ *tea.Program, msg tea.WindowSizeMsg) {
		msgs <- msg
	}
	return ticks, msgs
}

func recvSize(t *testing.T, msgs <-chan tea.WindowSizeMsg) tea.WindowSizeMsg {
	t.Helper()
	select {
	case m := <-msgs:
		return m
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for resize message")
		return tea.WindowSizeMsg{}
	}
}

func TestWithTTYResizeWatcherSendsOnSizeChange(t *testing.T) {
	ticks, msgs := stubResizeWatcher(t, func(call int32) (int, int) {
		if call == 1 {
			return 80, 24
		}
		return 81, 24
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, out := makePipe(t)
	var p tea.Program
	withTTYResizeWatcher(ctx, out)(&p)

	ticks <- time.Now()
	ticks <- time.Now()

	assert.Equal(t, tea.WindowSizeMsg{Width: 80, Height: 24}, recvSize(t, msgs))
	assert.Equal(t, tea.WindowSizeMsg{Width: 81, Height: 24}, recvSize(t, msgs))
}

func TestWithTTYResizeWatcherSkipsUnchangedSize(t *testing.T) {
	ticks, msgs := stubResizeWatcher(t, func(call int32) (int, int) {
		if call <= 2 {
			return 80, 24
		}
		return 81, 24
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, out := makePipe(t)
	var p tea.Program
	withTTYResizeWatcher(ctx, out)(&p)

	ticks <- time.Now()
	assert.Equal(t, 80, recvSize(t, msgs).Width)

	ticks <- time.Now()
	select {
	case m := <-msgs:
		t.Fatalf("unexpected resize message on unchanged size: %+v", m)
	case <-time.After(150 * time.Millisecond):
	}

	ticks <- time.Now()
	assert.Equal(t, 81, recvSize(t, msgs).Width)
}

func TestResolveSnapshotSize(t *testing.T) {
	origTermGetSize := termGetSize
	defer func() { termGetSize = origTermGetSize }()

	termGetSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
	t.Setenv("COLUMNS", "")
	t.Setenv("LINES", "")

	assert.Equal(t, snapshotSize{Width: 80, Height: 24}, resolveSnapshotSize(0, 0))
	assert.Equal(t, snapshotSize{Width: 100, Height: 24}, resolveSnapshotSize(100, 0))

	t.Setenv("COLUMNS", "132")
	t.Setenv("LINES", "50")
	assert.Equal(t, snapshotSize{Width: 132, Height: 50}, resolveSnapshotSize(0, 0))
	assert.Equal(t, snapshotSize{Width: 132, Height: 10}, resolveSnapshotSize(0, 10))

	termGetSize = func(int) (int, int, error) { return 120, 40, nil }
	assert.Equal(t, snapshotSize{Width: 120, Height: 40}, resolveSnapshotSize(0, 0))
	assert.Equal(t, snapshotSize{Width: 60, Height: 12}, resolveSnapshotSize(60, 12))
}
