package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const citiesCSV = "name,city,population\nada,London,8900000\nbob,Paris,2100000\ncy,Berlin,3600000\n"

// isolateConfig points the config search at an empty temp dir.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("NO_COLOR", "")
	return dir
}

// stubTerminal makes stdout look piped and stdin look like a terminal unless
// the test overrides them.
func stubTerminal(t *testing.T, stdinPiped bool) {
	t.Helper()
	origIn, origOut := stdinIsPiped, stdoutIsPiped
	stdinIsPiped = func() bool { return stdinPiped }
	stdoutIsPiped = func() bool { return true }
	t.Cleanup(func() {
		stdinIsPiped, stdoutIsPiped = origIn, origOut
	})
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	isolateConfig(t)
	stubTerminal(t, stdin != "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

func generatedRows(n int) string {
	var b strings.Builder
	b.WriteString("id,value\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d,v%d\n", i, i)
	}
	return b.String()
}

func TestCLI_SnapshotShowsTable(t *testing.T) {
	path := writeFile(t, "cities.csv", citiesCSV)
	out, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "60", "--height", "10")
	require.NoError(t, err)

	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "London")
	assert.Contains(t, out, "cities.csv")
	assert.Contains(t, out, "1/3")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 10)
}

func TestCLI_PipedStdoutRendersPlainSnapshot(t *testing.T) {
	path := writeFile(t, "cities.csv", citiesCSV)
	out, err := runCLI(t, "", path, "--width", "60", "--height", "8")
	require.NoError(t, err)
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Paris")
}

func TestCLI_SnapshotReadsStdin(t *testing.T) {
	out, err := runCLI(t, citiesCSV, "--snapshot", "--no-color", "--width", "60", "--height", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Berlin")
	assert.Contains(t, out, "<stdin>")

	out, err = runCLI(t, citiesCSV, "-", "--snapshot", "--no-color", "--width", "60", "--height", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Berlin")
}

func TestCLI_SnapshotPressKeys(t *testing.T) {
	path := writeFile(t, "rows.csv", generatedRows(300))
	out, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "40", "--height", "10", "--press", ":250<CR>")
	require.NoError(t, err)
	assert.Contains(t, out, "250/300")
	assert.Contains(t, out, "v250")

	out, err = runCLI(t, "", path, "--snapshot", "--no-color", "--width", "40", "--height", "10", "--press", "/v42<CR>")
	require.NoError(t, err)
	assert.Contains(t, out, "42/300")
}

func TestCLI_SnapshotDelimiterAndNoHeader(t *testing.T) {
	path := writeFile(t, "data.txt", "a;b\n1;2\n")
	out, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "40", "--height", "8", "--delimiter", "semicolon", "--no-header")
	require.NoError(t, err)
	assert.Contains(t, out, "1/2", "the first record is data")
	assert.NotContains(t, out, "a;b")
}

func TestCLI_LimitFlagsWindowRows(t *testing.T) {
	path := writeFile(t, "rows.csv", generatedRows(500))
	out, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "60", "--height", "8", "--offset", "100", "--limit", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "v101")
	assert.Contains(t, out, "rows 101-150 of 500")
}

func TestCLI_OnLimit(t *testing.T) {
	path := writeFile(t, "rows.csv", generatedRows(20))

	_, err := runCLI(t, "", path, "--snapshot", "--no-color", "--max-rows", "5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "limit")

	out, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "80", "--height", "12", "--max-rows", "5", "--on-limit", "truncate")
	require.NoError(t, err)
	assert.Contains(t, out, "row count limit reached")
	assert.Contains(t, out, "1/5")
}

func TestCLI_UsageErrors(t *testing.T) {
	path := writeFile(t, "cities.csv", citiesCSV)
	tests := []struct {
		name string
		args []string
	}{
		{"limit and tail", []string{path, "--snapshot", "--limit", "5", "--tail", "5"}},
		{"negative offset", []string{path, "--snapshot", "--offset", "-1"}},
		{"unknown theme", []string{path, "--snapshot", "--theme", "nope"}},
		{"bad on-limit", []string{path, "--snapshot", "--on-limit", "ignore"}},
		{"bad delimiter", []string{path, "--snapshot", "--delimiter", "ab"}},
		{"zero max rows", []string{path, "--snapshot", "--max-rows", "0"}},
		{"too many args", []string{path, path}},
		{"unknown flag", []string{path, "--frobnicate"}},
		{"no input", []string{"--snapshot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err), err.Error())
		})
	}
}

func TestCLI_MissingFileIsRuntimeError(t *testing.T) {
	_, err := runCLI(t, "", filepath.Join(t.TempDir(), "missing.csv"), "--snapshot")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "missing.csv")

	_, err = runCLI(t, "", t.TempDir(), "--snapshot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestCLI_BadConfigFileIsUsageError(t *testing.T) {
	path := writeFile(t, "cities.csv", citiesCSV)
	cfg := writeFile(t, "config.yaml", "parser:\n  bogus: 1\n")
	_, err := runCLI(t, "", path, "--snapshot", "--config-file", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestCLI_ConfigFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "cities.csv", citiesCSV)
	cfg := writeFile(t, "config.yaml", "layout:\n  row_numbers: false\n")

	with, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "60", "--height", "8")
	require.NoError(t, err)
	without, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "60", "--height", "8", "--config-file", cfg)
	require.NoError(t, err)
	assert.NotEqual(t, with, without)

	flag, err := runCLI(t, "", path, "--snapshot", "--no-color", "--width", "60", "--height", "8", "--no-row-numbers")
	require.NoError(t, err)
	assert.Equal(t, without, flag)
}

func TestCLI_ConfigGet(t *testing.T) {
	for _, args := range [][]string{{"config"}, {"config", "get"}} {
		out, err := runCLI(t, "", args...)
		require.NoError(t, err)
		assert.Contains(t, out, "theme: dark # Theme name")
		assert.Contains(t, out, "delimiter: auto # Field delimiter")
		assert.Contains(t, out, "max_rows: 5000000")
		assert.NotContains(t, out, "# merged with")
	}
}

func TestCLI_ConfigGetMergesUserFile(t *testing.T) {
	dir := isolateConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "csvx"), 0o755))
	p := filepath.Join(dir, "csvx", "config.toml")
	require.NoError(t, os.WriteFile(p, []byte("[ui]\ntheme = \"light\"\n"), 0o600))
	stubTerminal(t, false)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "# merged with "+p)
	assert.Contains(t, out.String(), "theme: light")
}

func TestCLI_ConfigPath(t *testing.T) {
	out, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in defaults")

	cfg := writeFile(t, "my.yaml", "")
	out, err = runCLI(t, "", "config", "path", "--config-file", cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg+"\n", out)
}

func TestCLI_ConfigThemes(t *testing.T) {
	out, err := runCLI(t, "", "config", "themes")
	require.NoError(t, err)
	assert.Contains(t, out, "* dark\n")
	assert.Contains(t, out, "  light\n")
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "csvx v0.0.0-nightly")

	out, err = runCLI(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "csvx")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitUsage, ExitCode(usageErrorf("bad %s", "flag")))
	assert.Equal(t, ExitUsage, ExitCode(fmt.Errorf("wrapped: %w", usageError(errors.New("x")))))
	assert.Equal(t, ExitUsage, ExitCode(runtimeError(usageError(errors.New("x")))), "an existing code is kept")
	assert.Equal(t, ExitFailure, ExitCode(runtimeError(errors.New("x"))))
	assert.Nil(t, usageError(nil))
	assert.Nil(t, runtimeError(nil))

	err := usageErrorf("limit: %w", os.ErrInvalid)
	assert.ErrorIs(t, err, os.ErrInvalid)
	assert.Equal(t, "limit: invalid argument", err.Error())
	assert.Equal(t, "exit status 3", (&ExitError{Code: 3}).Error())
}
