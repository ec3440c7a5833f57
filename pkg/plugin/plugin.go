// SPDX-License-Identifier: MPL-2.0

// Package plugin discovers, installs and enables plugins, honoring the
// dependencies declared in their manifests, and dispatches hook and command
// scripts to a runtime.Executor.
//
// A plugin is a directory holding plugin.toml (or plugin.json) plus the
// scripts its manifest references. Enabling a plugin enables its
// dependencies first; disabling one disables its dependents first.
package plugin

import "fmt"

const (
	// NotInstalled is the zero state.
	NotInstalled StateKind = iota
	// Installed plugins are registered but inactive.
	Installed
	// Enabled plugins take part in hook dispatch and accept commands.
	Enabled
	// Failed marks a plugin the host put into an error state.
	Failed
)

type (
	// StateKind enumerates plugin lifecycle states.
	StateKind int

	// State is a plugin's lifecycle state. Message is only set for Failed.
	State struct {
		Kind    StateKind
		Message string
	}

	// Plugin is a registered plugin.
	Plugin struct {
		Manifest *Manifest
		// Dir is the plugin root; scripts resolve and run inside it.
		Dir   string
		State State
	}

	// Summary is the host-facing description of a plugin.
	Summary struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description,omitempty"`
		Author      string `json:"author,omitempty"`
	}
)

// String returns the state name.
func (k StateKind) String() string {
	switch k {
	case NotInstalled:
		return "not-installed"
	case Installed:
		return "installed"
	case Enabled:
		return "enabled"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// String returns the state name, with the message for Failed.
func (s State) String() string {
	if s.Kind == Failed && s.Message != "" {
		return fmt.Sprintf("%s: %s", s.Kind, s.Message)
	}
	return s.Kind.String()
}

// Name returns the manifest name.
func (p *Plugin) Name() string {
	return p.Manifest.Name
}

// IsEnabled reports whether the plugin is enabled.
func (p *Plugin) IsEnabled() bool {
	return p.State.Kind == Enabled
}

// Summary returns the host-facing summary.
func (p *Plugin) Summary() Summary {
	return Summary{
		Name:        p.Manifest.Name,
		Version:     p.Manifest.Version,
		Description: p.Manifest.Description,
		Author:      p.Manifest.Author,
	}
}

func (p *Plugin) clone() *Plugin {
	c := *p
	c.Manifest = p.Manifest.Clone()
	return &c
}
