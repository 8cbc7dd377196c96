// Package source reads a batch file into raw records.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/invoicelens/internal/ingest/extract"
	"gopkg.in/yaml.v3"
)

var (
	ErrSourceNotFound    = errors.New("source file not found")
	ErrSourceUnparseable = errors.New("source file unparseable")
)

// Format is a supported batch file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension. Unknown extensions are JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// ReadFile reads every record in path. A top-level array yields one record per element;
// any other document yields a single record.
func ReadFile(path string) ([]extract.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, DetectFormat(path))
}

// Read decodes records of the given format from r.
func Read(r io.Reader, format Format) ([]extract.Record, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r)
	case FormatYAML:
		return readYAML(r)
	default:
		return readJSON(r)
	}
}

func readJSON(r io.Reader) ([]extract.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrSourceUnparseable)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnparseable, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrSourceUnparseable)
	}
	return records(doc), nil
}

func readYAML(r io.Reader) ([]extract.Record, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrSourceUnparseable)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnparseable, err)
	}
	return records(normalizeYAML(doc)), nil
}

func records(doc any) []extract.Record {
	if list, ok := doc.([]any); ok {
		return list
	}
	return []extract.Record{doc}
}

// normalizeYAML converts map[any]any nodes, produced for non-string keys, into
// map[string]any so path resolution sees one map type.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeYAML(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalizeYAML(child)
		}
		return t
	default:
		return v
	}
}
