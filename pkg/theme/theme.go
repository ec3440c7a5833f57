// SPDX-License-Identifier: MPL-2.0

// Package theme loads, caches and activates named color/variable themes.
//
// A theme lives either in a flat file (<dir>/<name>.toml, <dir>/<name>.json)
// or in a directory (<dir>/<name>/theme.toml, <dir>/<name>/theme.json).
// Theme inheritance through Extends is recorded but never resolved.
package theme

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/hyprsupreme/hyprsupreme/internal/format"
)

// FileStem is the file name (without extension) of a directory-style theme.
const FileStem = "theme"

const defaultVersion = "0.1.0"

var (
	// ErrNotFound is matched by every lookup miss in this package.
	ErrNotFound = errors.New("not found")

	// ErrThemeNotFound is returned when no search directory holds the theme.
	ErrThemeNotFound = fmt.Errorf("theme %w", ErrNotFound)
	// ErrColorNotFound is returned when the active theme has no such color.
	ErrColorNotFound = fmt.Errorf("color %w", ErrNotFound)
	// ErrVariableNotFound is returned when the active theme has no such variable.
	ErrVariableNotFound = fmt.Errorf("variable %w", ErrNotFound)

	// ErrNoActiveTheme is returned by active-theme queries before SetActive succeeds.
	ErrNoActiveTheme = errors.New("no active theme")

	// ErrInvalidName is returned for theme names that are not a single local path element.
	ErrInvalidName = errors.New("invalid theme name")
)

type (
	// Theme is a named set of colors and variables.
	Theme struct {
		Name        string            `toml:"name" json:"name"`
		Author      string            `toml:"author,omitempty" json:"author,omitempty"`
		Description string            `toml:"description,omitempty" json:"description,omitempty"`
		Version     string            `toml:"version" json:"version"`
		Extends     string            `toml:"extends,omitempty" json:"extends,omitempty"`
		Colors      map[string]string `toml:"colors" json:"colors"`
		Variables   map[string]string `toml:"variables" json:"variables"`
		Metadata    map[string]string `toml:"metadata" json:"metadata"`
	}

	// LookupError names the missing theme, color or variable.
	LookupError struct {
		// Kind is one of the package sentinels (ErrThemeNotFound, ErrInvalidName, ...).
		Kind error
		Name string
	}
)

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Name)
}

// Unwrap returns the kind sentinel so errors.Is matches both it and ErrNotFound.
func (e *LookupError) Unwrap() error { return e.Kind }

// New returns an empty theme with defaults applied.
func New(name string) *Theme {
	t := &Theme{Name: name}
	t.normalize()
	return t
}

// ReadFile parses the theme stored at path.
func ReadFile(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file %s: %w", path, err)
	}

	var t Theme
	if err := format.Decode(path, data, &t); err != nil {
		return nil, err
	}
	t.normalize()
	return &t, nil
}

// Save writes the theme to path in the given format.
func (t *Theme) Save(path string, f format.Format) error {
	data, err := format.Encode(f, t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create theme directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme to %s: %w", path, err)
	}
	return nil
}

// Merge overwrites t's colors, variables and metadata with other's entries.
func (t *Theme) Merge(other *Theme) {
	if other == nil {
		return
	}
	t.normalize()
	maps.Copy(t.Colors, other.Colors)
	maps.Copy(t.Variables, other.Variables)
	maps.Copy(t.Metadata, other.Metadata)
}

// Color returns the named color.
func (t *Theme) Color(name string) (string, bool) {
	v, ok := t.Colors[name]
	return v, ok
}

// Variable returns the named variable.
func (t *Theme) Variable(name string) (string, bool) {
	v, ok := t.Variables[name]
	return v, ok
}

// Clone returns a deep copy of t.
func (t *Theme) Clone() *Theme {
	out := *t
	out.Colors = maps.Clone(t.Colors)
	out.Variables = maps.Clone(t.Variables)
	out.Metadata = maps.Clone(t.Metadata)
	out.normalize()
	return &out
}

func (t *Theme) normalize() {
	if t.Version == "" {
		t.Version = defaultVersion
	}
	if t.Colors == nil {
		t.Colors = make(map[string]string)
	}
	if t.Variables == nil {
		t.Variables = make(map[string]string)
	}
	if t.Metadata == nil {
		t.Metadata = make(map[string]string)
	}
}
