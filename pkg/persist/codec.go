package persist

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samlin1112/CitySim/pkg/sim"
)

// Format is a snapshot document encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported encodings, default first.
var Formats = []Format{FormatXML, FormatJSON, FormatYAML}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFormat accepts a format name, case-insensitively. "yml" means YAML
// and the empty string means XML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown snapshot format %q (want xml, json or yaml)", name)
}

// FormatFromPath picks the format from a file extension, defaulting to XML.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatXML
	}
	return f
}

// Marshal encodes a snapshot document.
func Marshal(s Snapshot, f Format) ([]byte, error) {
	switch f {
	case FormatXML, "":
		data, err := xml.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding XML snapshot: %w", err)
		}
		return append([]byte(xml.Header), append(data, '\n')...), nil
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON snapshot: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encoding YAML snapshot: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown snapshot format %q", f)
}

// Unmarshal decodes a snapshot document. Syntax errors are ErrCorruptSnapshot.
func Unmarshal(data []byte, f Format) (Snapshot, error) {
	var s Snapshot
	var err error
	switch f {
	case FormatXML, "":
		err = xml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &s)
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		return s, fmt.Errorf("unknown snapshot format %q", f)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, f, err)
	}
	return s, nil
}

// Encode writes c to w as a document in format f.
func Encode(w io.Writer, c *sim.City, f Format) error {
	data, err := Marshal(Serialize(c), f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Decode reads a document in format f from r and rebuilds the city.
func Decode(r io.Reader, f Format) (*sim.City, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	s, err := Unmarshal(data, f)
	if err != nil {
		return nil, err
	}
	return Deserialize(s)
}
