// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/hyprsupreme/hyprsupreme/internal/format"
)

// ManifestStem is the manifest file name without extension.
const ManifestStem = "plugin"

const defaultVersion = "0.1.0"

type (
	// Manifest describes a plugin: identity, dependencies, hooks and commands.
	Manifest struct {
		Name        string `toml:"name" json:"name"`
		DisplayName string `toml:"display_name,omitempty" json:"display_name,omitempty"`
		Version     string `toml:"version" json:"version"`
		Author      string `toml:"author,omitempty" json:"author,omitempty"`
		Description string `toml:"description,omitempty" json:"description,omitempty"`
		License     string `toml:"license,omitempty" json:"license,omitempty"`
		Repository  string `toml:"repository,omitempty" json:"repository,omitempty"`
		// Dependencies maps plugin names to semver requirements.
		Dependencies map[string]string `toml:"dependencies,omitempty" json:"dependencies,omitempty"`
		Hooks        []Hook            `toml:"hooks,omitempty" json:"hooks,omitempty"`
		Commands     []Command         `toml:"commands,omitempty" json:"commands,omitempty"`
		// ConfigSchema is carried through load and save without interpretation.
		ConfigSchema map[string]any `toml:"config_schema,omitempty" json:"config_schema,omitempty"`
	}

	// Hook binds a script to a named event. Lower priorities run first.
	Hook struct {
		Name     string `toml:"name" json:"name"`
		Script   string `toml:"script" json:"script"`
		Priority int    `toml:"priority,omitempty" json:"priority,omitempty"`
	}

	// Command is a user-invocable script.
	Command struct {
		Name        string `toml:"name" json:"name"`
		Script      string `toml:"script" json:"script"`
		Description string `toml:"description,omitempty" json:"description,omitempty"`
	}
)

// NewManifest returns a manifest with defaults applied.
func NewManifest(name string) *Manifest {
	m := &Manifest{Name: name}
	m.normalize()
	return m
}

// ReadManifest parses a manifest file. The format follows the extension.
func ReadManifest(path string) (*Manifest, error) {
	var m Manifest
	if err := format.ReadFile(path, &m); err != nil {
		return nil, err
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%s: manifest has no name", path)
	}
	m.normalize()
	return &m, nil
}

// FindManifest returns the manifest path inside dir, plugin.toml before
// plugin.json. It returns fs.ErrNotExist wrapped when neither exists.
func FindManifest(dir string) (string, error) {
	for _, ext := range format.Extensions {
		p := filepath.Join(dir, ManifestStem+"."+ext)
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s.toml or %s.json in %s: %w", ManifestStem, ManifestStem, dir, os.ErrNotExist)
}

// Save writes the manifest. The format follows the extension.
func (m *Manifest) Save(path string) error {
	return format.WriteFile(path, m)
}

// Hook returns the named hook.
func (m *Manifest) Hook(name string) (Hook, bool) {
	i := slices.IndexFunc(m.Hooks, func(h Hook) bool { return h.Name == name })
	if i < 0 {
		return Hook{}, false
	}
	return m.Hooks[i], true
}

// Command returns the named command.
func (m *Manifest) Command(name string) (Command, bool) {
	i := slices.IndexFunc(m.Commands, func(c Command) bool { return c.Name == name })
	if i < 0 {
		return Command{}, false
	}
	return m.Commands[i], true
}

// DependencyNames returns the dependency names in sorted order.
func (m *Manifest) DependencyNames() []string {
	return slices.Sorted(maps.Keys(m.Dependencies))
}

// DependsOn reports whether the manifest lists name as a dependency.
func (m *Manifest) DependsOn(name string) bool {
	_, ok := m.Dependencies[name]
	return ok
}

// Satisfies reports whether the manifest version meets requirement.
func (m *Manifest) Satisfies(requirement string) (bool, error) {
	return Satisfies(m.Version, requirement)
}

// Validate checks the version, every dependency requirement, and that hook
// and command entries name a script.
func (m *Manifest) Validate() error {
	var errs []error
	if _, err := ParseVersion(m.Version); err != nil {
		errs = append(errs, err)
	}
	for _, dep := range m.DependencyNames() {
		if _, err := ParseRequirement(m.Dependencies[dep]); err != nil {
			errs = append(errs, fmt.Errorf("dependency %s: %w", dep, err))
		}
	}
	for _, h := range m.Hooks {
		if h.Name == "" || h.Script == "" {
			errs = append(errs, fmt.Errorf("hook %q: name and script are required", h.Name))
		}
	}
	for _, c := range m.Commands {
		if c.Name == "" || c.Script == "" {
			errs = append(errs, fmt.Errorf("command %q: name and script are required", c.Name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("plugin %s: %w", m.Name, err)
	}
	return nil
}

// Clone returns a deep copy. ConfigSchema is copied one level deep.
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Dependencies = maps.Clone(m.Dependencies)
	c.Hooks = slices.Clone(m.Hooks)
	c.Commands = slices.Clone(m.Commands)
	c.ConfigSchema = maps.Clone(m.ConfigSchema)
	return &c
}

func (m *Manifest) normalize() {
	if m.Version == "" {
		m.Version = defaultVersion
	}
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]string)
	}
}
