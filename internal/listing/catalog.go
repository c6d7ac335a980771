package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a catalog file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a catalog format from a file extension.
// Anything that isn't .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// catalog is the wrapped form of a catalog file: {properties: [...]}.
type catalog struct {
	Properties []*Property `json:"properties" yaml:"properties"`
}

// Decode reads a list of properties from r. Both a bare list and an
// object with a "properties" key are accepted.
func Decode(r io.Reader, format Format) ([]*Property, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var props []*Property
	switch format {
	case FormatJSON:
		props, err = decodeJSON(data)
	case FormatYAML:
		props, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unknown catalog format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	for i, p := range props {
		if p == nil {
			return nil, fmt.Errorf("catalog entry %d is empty", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
	}

	return props, nil
}

func decodeJSON(data []byte) ([]*Property, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var props []*Property
		if err := json.Unmarshal(trimmed, &props); err != nil {
			return nil, fmt.Errorf("parsing catalog: %w", err)
		}
		return props, nil
	}

	var c catalog
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return c.Properties, nil
}

func decodeYAML(data []byte) ([]*Property, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	// Empty document
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var props []*Property
		if err := node.Decode(&props); err != nil {
			return nil, fmt.Errorf("parsing catalog: %w", err)
		}
		return props, nil
	}

	var c catalog
	if err := node.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return c.Properties, nil
}
