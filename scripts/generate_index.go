// Command generate_index writes the release page (index.html) into a
// goreleaser dist directory. The page is README.md rendered to HTML, with the
// Installation section replaced by links to the archives found in dist.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// archiveRE matches csvx_<version>_<OS>_<arch>.tar.gz and .zip archives.
var archiveRE = regexp.MustCompile(`^csvx_(.+)_(Darwin|Linux|Windows)_(arm64|x86_64)\.(?:tar\.gz|zip)$`)

var platformNames = map[string]string{
	"Darwin_arm64":   "macOS (Apple Silicon)",
	"Darwin_x86_64":  "macOS (Intel)",
	"Linux_arm64":    "Linux (ARM64)",
	"Linux_x86_64":   "Linux (x86_64)",
	"Windows_arm64":  "Windows (ARM64)",
	"Windows_x86_64": "Windows (x86_64)",
}

type artifact struct {
	Platform string
	File     string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(2)
	}
	if err := run("README.md", os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "generate_index: %v\n", err)
		os.Exit(1)
	}
}

func run(readmePath, distDir string) error {
	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return fmt.Errorf("read readme: %w", err)
	}
	version, arts, err := scanDist(distDir)
	if err != nil {
		return err
	}

	body := replaceSection(renderReadme(readme), "installation", installationHTML(version, arts))

	indexPath := filepath.Join(distDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := writePage(f, body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
	return nil
}

func renderReadme(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return markdown.Render(p.Parse(src), r)
}

// scanDist returns the release version and one archive per platform, sorted
// by platform label. The version is "unknown" when no archive matches.
func scanDist(distDir string) (string, []artifact, error) {
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return "", nil, fmt.Errorf("read dist: %w", err)
	}
	version := "unknown"
	seen := map[string]bool{}
	var arts []artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := archiveRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		key := m[2] + "_" + m[3]
		if seen[key] {
			continue
		}
		seen[key] = true
		version = m[1]
		arts = append(arts, artifact{Platform: platformNames[key], File: e.Name()})
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].Platform < arts[j].Platform })
	return version, arts, nil
}

func installationHTML(version string, arts []artifact) string {
	var sb strings.Builder
	sb.WriteString(`<h2 id="installation">Installation</h2>
<div class="downloads">
`)
	fmt.Fprintf(&sb, "  <h3>%s</h3>\n  <table class=\"download-table\">\n", version)
	for _, a := range arts {
		fmt.Fprintf(&sb, "    <tr><td class=\"platform-name\">%s</td><td><a href=\"%s\">%s</a></td></tr>\n", a.Platform, a.File, a.File)
	}
	sb.WriteString(`  </table>
</div>
<p>Extract the archive and put the binary on your PATH:</p>
<pre><code class="language-bash">tar -xzf csvx_*.tar.gz
sudo mv csvx /usr/local/bin/
</code></pre>
`)
	return sb.String()
}

// replaceSection swaps the <h2 id="..."> section up to the next h2 for
// section. The page is returned unchanged when either heading is missing.
func replaceSection(page []byte, id, section string) []byte {
	start := bytes.Index(page, []byte(`<h2 id="`+id+`">`))
	if start == -1 {
		return page
	}
	rest := page[start+1:]
	next := bytes.Index(rest, []byte(`<h2 id="`))
	if next == -1 {
		return page
	}
	next += start + 1

	out := make([]byte, 0, len(page)+len(section))
	out = append(out, page[:start]...)
	out = append(out, section...)
	out = append(out, page[next:]...)
	return out
}

func writePage(w io.Writer, body []byte) error {
	if _, err := io.WriteString(w, pageHeader); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

const pageHeader = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>csvx - terminal CSV viewer</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    h1 { color: #0f766e; border-bottom: 2px solid #0f766e; padding-bottom: 10px; }
    h2 { color: #115e59; margin-top: 30px; }
    code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
    pre code { background: none; color: inherit; padding: 0; }
    .downloads { background: #f0fdfa; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #0f766e; }
    .download-table td { padding: 6px 8px; }
    .platform-name { font-weight: 500; width: 220px; }
  </style>
</head>
<body>
`
