package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromName picks the format from a file or object name. Unknown extensions are JSON.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads a spec document from disk.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec %s: %w", path, err)
	}
	s, err := Parse(data, FormatFromName(path))
	if err != nil {
		return nil, fmt.Errorf("parse spec %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a spec document.
func Parse(data []byte, format Format) (*Spec, error) {
	var s Spec
	switch format {
	case FormatYAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return &s, nil
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported spec format %q", format)
	}
	return &s, nil
}

// Encode serializes s. JSON output is indented.
func Encode(s *Spec, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported spec format %q", format)
	}
}

// WriteFile encodes s into path, picking the format from the extension.
func WriteFile(path string, s *Spec) error {
	data, err := Encode(s, FormatFromName(path))
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write spec %s: %w", path, err)
	}
	return nil
}
