package wire

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a strict document format
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unknown document format: %s", s)
	}
}

// FormatForPath picks a format from a file extension, defaulting to JSON
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// NewContainer parses data as a strict document of the given format
func NewContainer(format Format, data []byte) (KeyedContainer, error) {
	switch format {
	case FormatJSON:
		return NewJSONContainer(data)
	case FormatYAML:
		return NewYAMLContainer(data)
	default:
		return nil, fmt.Errorf("unknown document format: %d", format)
	}
}

// NewEncoder creates a root encoder for the given format
func NewEncoder(format Format) (DocumentEncoder, error) {
	switch format {
	case FormatJSON:
		return NewJSONEncoder(), nil
	case FormatYAML:
		return NewYAMLEncoder(), nil
	default:
		return nil, fmt.Errorf("unknown document format: %d", format)
	}
}
