// Package settings holds build metadata and the per-invocation settings of
// the csvx CLI.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "csvx"

// VersionInformation is set at build time with -ldflags "-X ...".
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo describes the running binary.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// InputSettings describes where the table is read from.
type InputSettings struct {
	// Path is the file argument; empty or "-" means stdin.
	Path      string
	FromStdin bool
}

// Run holds the settings of one csvx invocation.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	// LogFile receives log output directly instead of the deferred stderr
	// buffer.
	LogFile string
	NoColor bool
	// Snapshot renders a single frame to stdout instead of starting a
	// terminal session. It is also set when stdout is not a terminal.
	Snapshot bool
}

// NewCliParams returns the defaults for a CLI run: info-level logging,
// color on, interactive.
func NewCliParams() *Run {
	return &Run{}
}

// SetInput records the file argument, if any.
func (r *Run) SetInput(args []string) {
	r.Input = InputSettings{}
	if len(args) > 0 {
		r.Input.Path = args[0]
	}
	r.Input.FromStdin = r.Input.Path == "" || r.Input.Path == "-"
}

// IsDebug reports whether debug-level logging was requested.
func (r *Run) IsDebug() bool {
	return r != nil && r.MinLogLevel < 0
}

// Interactive reports whether the run takes over the terminal.
func (r *Run) Interactive() bool {
	return r != nil && !r.Snapshot
}
