package cmd

import (
	"os"
	"testing"

	"github.com/oakwood-commons/csvx/internal/ui"
)

// TestMain stubs platform actions (clipboard) so that no test in the cmd
// package writes to the real clipboard.
func TestMain(m *testing.M) {
	restore := ui.StubPlatformActions()
	code := m.Run()
	restore()
	os.Exit(code)
}
