// SPDX-License-Identifier: MPL-2.0

package hyprconf

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

const (
	// FileName is the conventional name of the top-level configuration document.
	FileName = "hyprsupreme.toml"

	// DefaultProfileName is used when a document does not name a default profile.
	DefaultProfileName = "default"

	defaultName    = "hyprsupreme-config"
	defaultVersion = "0.1.0"
)

// ErrProfileNotFound is the sentinel wrapped by ProfileNotFoundError.
var ErrProfileNotFound = errors.New("profile not found")

type (
	// Config is a hyprsupreme configuration document.
	Config struct {
		Metadata       Metadata           `toml:"metadata" json:"metadata"`
		Variables      map[string]string  `toml:"variables" json:"variables"`
		Profiles       map[string]Profile `toml:"profiles" json:"profiles"`
		DefaultProfile string             `toml:"default_profile" json:"default_profile"`
		Imports        []Import           `toml:"imports" json:"imports"`
		Hyprland       HyprlandConfig     `toml:"hyprland" json:"hyprland"`
	}

	// Metadata describes the configuration project.
	Metadata struct {
		Name        string `toml:"name" json:"name"`
		Author      string `toml:"author,omitempty" json:"author,omitempty"`
		Version     string `toml:"version" json:"version"`
		Description string `toml:"description,omitempty" json:"description,omitempty"`
	}

	// Profile is a named overlay selected at resolution time (laptop, desktop, work).
	Profile struct {
		Variables map[string]string `toml:"variables" json:"variables"`
		Imports   []Import          `toml:"imports,omitempty" json:"imports,omitempty"`
		Hyprland  *HyprlandConfig   `toml:"hyprland,omitempty" json:"hyprland,omitempty"`
	}

	// Import references another document to fold into this one.
	// Merge = true fills gaps only; Merge = false overrides.
	Import struct {
		Path  string `toml:"path" json:"path"`
		Merge bool   `toml:"merge" json:"merge"`
	}

	// HyprlandConfig is the compositor specific block of a document.
	HyprlandConfig struct {
		// ConfigPath points at the main hyprland.conf. When set, replacing
		// imports leave this block untouched.
		ConfigPath  string            `toml:"config_path,omitempty" json:"config_path,omitempty"`
		Modules     []Module          `toml:"modules" json:"modules"`
		Theme       map[string]string `toml:"theme" json:"theme"`
		Keybindings []Keybinding      `toml:"keybindings" json:"keybindings"`
		Autostart   []Autostart       `toml:"autostart" json:"autostart"`
	}

	// Module is a Hyprland config fragment included by the generated config.
	Module struct {
		Name string `toml:"name" json:"name"`
		Path string `toml:"path" json:"path"`
		// Enabled defaults to true when omitted.
		Enabled *bool `toml:"enabled,omitempty" json:"enabled,omitempty"`
	}

	// Keybinding binds a key combination to a dispatcher command.
	Keybinding struct {
		Modifiers   []string `toml:"modifiers" json:"modifiers"`
		Key         string   `toml:"key" json:"key"`
		Command     string   `toml:"command" json:"command"`
		Description string   `toml:"description,omitempty" json:"description,omitempty"`
	}

	// Autostart is an application launched with the session.
	Autostart struct {
		Command   string `toml:"command" json:"command"`
		Wait      bool   `toml:"wait" json:"wait"`
		Workspace string `toml:"workspace,omitempty" json:"workspace,omitempty"`
	}

	// ProfileNotFoundError is returned when a requested profile is absent.
	ProfileNotFoundError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile %q not found", e.Name)
}

// Unwrap returns ErrProfileNotFound so callers can use errors.Is for programmatic detection.
func (e *ProfileNotFoundError) Unwrap() error { return ErrProfileNotFound }

// IsEnabled reports whether the module is enabled, treating an omitted flag as true.
func (m Module) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// New returns an empty document with defaults applied.
func New() *Config {
	c := &Config{}
	c.normalize()
	return c
}

// DefaultConfig returns the starter document written by `config init`.
func DefaultConfig() *Config {
	c := New()
	c.Metadata.Author = "HyprSupreme User"
	c.Metadata.Description = "A HyprSupreme configuration"

	c.Variables["color.background"] = "#1a1b26"
	c.Variables["color.foreground"] = "#c0caf5"
	c.Variables["color.accent"] = "#7aa2f7"

	c.Profiles[DefaultProfileName] = Profile{
		Variables: map[string]string{
			"terminal": "kitty",
			"browser":  "firefox",
		},
	}
	c.Profiles["laptop"] = Profile{
		Variables: map[string]string{
			"scale": "1.5",
		},
	}

	return c
}

// ActiveProfile returns the named profile, or the document's default profile
// when name is empty.
func (c *Config) ActiveProfile(name string) (*Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	p, ok := c.Profiles[name]
	if !ok {
		return nil, &ProfileNotFoundError{Name: name}
	}
	return &p, nil
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	return slices.Sorted(maps.Keys(c.Profiles))
}

// normalize fills defaults and allocates nil maps so merging never writes
// into a nil map.
func (c *Config) normalize() {
	if c.Metadata.Name == "" {
		c.Metadata.Name = defaultName
	}
	if c.Metadata.Version == "" {
		c.Metadata.Version = defaultVersion
	}
	if c.DefaultProfile == "" {
		c.DefaultProfile = DefaultProfileName
	}
	if c.Variables == nil {
		c.Variables = make(map[string]string)
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	for name, p := range c.Profiles {
		if p.Variables == nil {
			p.Variables = make(map[string]string)
			c.Profiles[name] = p
		}
	}
	if c.Hyprland.Theme == nil {
		c.Hyprland.Theme = make(map[string]string)
	}
}
