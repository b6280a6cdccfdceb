package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readme = `# csvx

Terminal CSV viewer.

## Installation

go install github.com/oakwood-commons/csvx@latest

## Usage

csvx data.csv
`

func TestScanDist(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"csvx_1.2.0_Linux_x86_64.tar.gz",
		"csvx_1.2.0_Darwin_arm64.tar.gz",
		"csvx_1.2.0_Windows_x86_64.zip",
		"csvx_1.2.0_SHA256SUMS",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	version, arts, err := scanDist(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", version)
	require.Len(t, arts, 3)
	assert.Equal(t, "Linux (x86_64)", arts[0].Platform)
	assert.Equal(t, "Windows (x86_64)", arts[1].Platform)
	assert.Equal(t, "macOS (Apple Silicon)", arts[2].Platform)
}

func TestScanDistEmpty(t *testing.T) {
	version, arts, err := scanDist(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "unknown", version)
	assert.Empty(t, arts)

	_, _, err = scanDist(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReplaceSection(t *testing.T) {
	page := renderReadme([]byte(readme))
	require.Contains(t, string(page), `<h2 id="installation">`)

	out := string(replaceSection(page, "installation", "<p>NEW</p>\n"))
	assert.Contains(t, out, "<p>NEW</p>")
	assert.NotContains(t, out, "go install")
	assert.Contains(t, out, `<h2 id="usage">`)

	assert.Equal(t, page, replaceSection(page, "missing", "x"))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	readmePath := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readmePath, []byte(readme), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "csvx_0.3.1_Linux_arm64.tar.gz"), nil, 0o600))

	require.NoError(t, run(readmePath, dir))

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	s := string(html)
	assert.True(t, strings.HasPrefix(s, "<!doctype html>"))
	assert.Contains(t, s, "<title>csvx - terminal CSV viewer</title>")
	assert.Contains(t, s, `href="csvx_0.3.1_Linux_arm64.tar.gz"`)
	assert.Contains(t, s, "<h3>0.3.1</h3>")
	assert.True(t, strings.HasSuffix(s, "</html>\n"))
}
