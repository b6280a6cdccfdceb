package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// copyToClipboardFn is the active clipboard implementation. Tests replace it
// via StubPlatformActions to prevent side effects.
var copyToClipboardFn = copyToClipboardImpl

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error { return copyToClipboardFn(text) }

// StubPlatformActions replaces the clipboard with a recorder and returns a
// restore function. Use in tests to prevent side effects.
func StubPlatformActions() (restore func()) {
	orig := copyToClipboardFn
	copyToClipboardFn = func(text string) error {
		lastStubbedCopy = text
		return nil
	}
	return func() {
		copyToClipboardFn = orig
	}
}

// lastStubbedCopy records what the stubbed clipboard received.
var lastStubbedCopy string

// copyToClipboardImpl writes through the platform clipboard tool (pbcopy,
// xclip, xsel, wl-copy or the Windows API).
func copyToClipboardImpl(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard available (install xclip, xsel, or wl-clipboard)")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
