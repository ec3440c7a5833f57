// SPDX-License-Identifier: MPL-2.0

// Package format decodes and encodes the structured documents hyprsupreme
// reads from disk (configuration files, plugin manifests, themes). The
// concrete encoding is chosen from the file extension: TOML is the primary
// format and JSON is accepted as a variant.
package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Document formats.
const (
	TOML Format = "toml"
	JSON Format = "json"
)

var (
	// ErrUnsupportedFormat is returned when a file extension maps to no known format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDecode is wrapped by every decoding failure.
	ErrDecode = errors.New("malformed document")
)

type (
	// Format identifies a document encoding.
	Format string

	// DecodeError reports a document that could not be parsed.
	DecodeError struct {
		Path   string
		Format Format
		Err    error
	}
)

// Extensions lists the known file extensions in lookup preference order.
var Extensions = []string{string(TOML), string(JSON)}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s document %s: %v", strings.ToUpper(string(e.Format)), e.Path, e.Err)
}

// Unwrap returns ErrDecode so callers can use errors.Is for programmatic detection.
func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Parse converts a user supplied name ("toml", "JSON") into a Format.
func Parse(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case TOML, "":
		return TOML, nil
	case JSON:
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FromPath returns the format implied by the file extension of path.
func FromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch Format(strings.ToLower(ext)) {
	case TOML:
		return TOML, nil
	case JSON:
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, path)
	}
}

// Ext returns the file extension (with leading dot) for f.
func (f Format) Ext() string {
	return "." + string(f)
}

// Decode parses data into v using the format implied by path.
// path is only used for format selection and error messages.
func Decode(path string, data []byte, v any) error {
	f, err := FromPath(path)
	if err != nil {
		return err
	}
	return DecodeAs(f, path, data, v)
}

// DecodeAs parses data into v using an explicit format.
func DecodeAs(f Format, path string, data []byte, v any) error {
	var err error
	switch f {
	case TOML:
		err = toml.Unmarshal(data, v)
	case JSON:
		err = json.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return &DecodeError{Path: path, Format: f, Err: err}
	}
	return nil
}

// ReadFile reads path and decodes it into v.
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(path, data, v)
}

// Encode serializes v in the requested format. Output is indented for
// human editing.
func Encode(f Format, v any) ([]byte, error) {
	switch f {
	case TOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
		return buf.Bytes(), nil
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// WriteFile encodes v using the format implied by path and writes it.
func WriteFile(path string, v any) error {
	f, err := FromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
