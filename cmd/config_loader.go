package cmd

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/csvx/internal/config"
)

// resolveConfigPath returns the explicit path if set, otherwise the first
// existing default location, otherwise "".
func resolveConfigPath(explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return config.DefaultPath()
}

// loadMergedConfig layers the user's file (if any) over the embedded
// defaults. It returns the path that was read, or "" for defaults only.
func loadMergedConfig(explicit string) (config.File, string, error) {
	cfg, err := config.Default()
	if err != nil {
		return config.File{}, "", fmt.Errorf("load default config: %w", err)
	}
	path := resolveConfigPath(explicit)
	if path == "" {
		return cfg, "", nil
	}
	user, err := config.LoadFile(path)
	if err != nil {
		return cfg, path, err
	}
	return config.Merge(cfg, user), path, nil
}

// renderConfigYAML prints cfg as YAML, with the yamlcomment tag of each field
// as a line comment. Map entries (themes) are only annotated once.
func renderConfigYAML(cfg config.File) (string, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	annotateNode(&node, reflect.TypeOf(cfg))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return buf.String(), nil
}

func annotateNode(n *yaml.Node, t reflect.Type) {
	if n == nil {
		return
	}
	if n.Kind == yaml.DocumentNode {
		for _, c := range n.Content {
			annotateNode(c, t)
		}
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n.Kind != yaml.MappingNode {
		return
	}

	switch t.Kind() {
	case reflect.Struct:
		fields := yamlFields(t)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			f, ok := fields[key.Value]
			if !ok {
				continue
			}
			if c := f.Tag.Get("yamlcomment"); c != "" && val.Kind == yaml.ScalarNode {
				val.LineComment = c
			}
			annotateNode(val, f.Type)
		}
	case reflect.Map:
		if len(n.Content) >= 2 {
			annotateNode(n.Content[1], t.Elem())
		}
	}
}

func yamlFields(t reflect.Type) map[string]reflect.StructField {
	out := make(map[string]reflect.StructField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		out[name] = f
	}
	return out
}
