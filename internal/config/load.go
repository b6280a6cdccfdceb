package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     File
	embeddedConfigErr  error
)

// DefaultYAML returns a copy of the embedded default config YAML bytes.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
// This is the single source of truth for default settings and themes.
func Default() (File, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		cfg, err := Decode(embeddedDefaultConfig, "default_config.yaml")
		if err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
			return
		}
		if cfg.UI.Theme == "" || len(cfg.UI.Themes) == 0 {
			embeddedConfigErr = fmt.Errorf("default config is missing required theme defaults")
			return
		}
		embeddedConfig = cfg
	})
	return clone(embeddedConfig), embeddedConfigErr
}

// clone copies the theme map so callers can merge into the result freely.
func clone(f File) File {
	if f.UI.Themes != nil {
		themes := make(map[string]ThemeConfig, len(f.UI.Themes))
		for k, v := range f.UI.Themes {
			themes[k] = v
		}
		f.UI.Themes = themes
	}
	return f
}

// Decode parses a config document. Files ending in .toml are read with
// go-toml; everything else is YAML. Unknown keys are rejected.
func Decode(data []byte, name string) (File, error) {
	var cfg File
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", name, err)
		}
		return cfg, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", name, err)
	}
	return cfg, nil
}

// LoadFile decodes the config file at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	return Decode(data, path)
}

// DefaultPath returns the first existing user config file, or "" when there
// is none. It looks in $XDG_CONFIG_HOME/csvx and then ~/.config/csvx for
// config.yaml, config.yml and config.toml.
func DefaultPath() string {
	for _, dir := range searchDirs() {
		for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
			p := filepath.Join(dir, name)
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p
			}
		}
	}
	return ""
}

func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "csvx"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		p := filepath.Join(home, ".config", "csvx")
		if len(dirs) == 0 || dirs[0] != p {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

// ErrNoThemes is returned when a merged config carries no themes at all.
var ErrNoThemes = errors.New("config defines no themes")

// ThemeNames lists the configured theme names in sorted order.
func (f File) ThemeNames() []string {
	names := make([]string, 0, len(f.UI.Themes))
	for name := range f.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectedTheme returns the theme named by ui.theme.
func (f File) SelectedTheme() (string, ThemeConfig, error) {
	if len(f.UI.Themes) == 0 {
		return "", ThemeConfig{}, ErrNoThemes
	}
	name := f.UI.Theme
	th, ok := f.UI.Themes[name]
	if !ok {
		return name, ThemeConfig{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(f.ThemeNames(), ", "))
	}
	return name, th, nil
}
