// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

const (
	// RuntimeAuto interprets *.sh scripts in-process and spawns everything else.
	RuntimeAuto RuntimeMode = "auto"
	// RuntimeNative spawns every script as a host process.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual interprets every script with the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"
)

var (
	// ErrInvalidRuntimeMode is returned when a RuntimeMode value is not recognized.
	ErrInvalidRuntimeMode = errors.New("invalid runtime mode")

	// ErrDirUnavailable is returned when the platform reports no configuration
	// or data directory and an operation needs one.
	ErrDirUnavailable = errors.New("configuration directory unavailable")
)

type (
	// RuntimeMode selects how plugin scripts are executed.
	RuntimeMode string

	// InvalidRuntimeModeError is returned when a RuntimeMode value is not recognized.
	// It wraps ErrInvalidRuntimeMode for errors.Is() compatibility.
	InvalidRuntimeModeError struct {
		Value RuntimeMode
	}

	// Config holds the application settings.
	Config struct {
		// ConfigFile is the hyprsupreme.toml to load. Empty means
		// <config dir>/hyprsupreme.toml.
		ConfigFile string `mapstructure:"config_file"`
		// Profile selects the configuration profile. Empty means the
		// document's default_profile.
		Profile string `mapstructure:"profile"`
		// Theme is applied on startup by commands that need an active theme.
		Theme string `mapstructure:"theme"`
		// PluginDirs are searched in order during discovery.
		PluginDirs []string `mapstructure:"plugin_dirs"`
		// ThemeDirs are searched in order when loading themes.
		ThemeDirs []string `mapstructure:"theme_dirs"`
		// EnabledPlugins are enabled, in order, when a session starts.
		EnabledPlugins []string    `mapstructure:"enabled_plugins"`
		Runtime        RuntimeMode `mapstructure:"runtime"`
		Log            LogConfig   `mapstructure:"log"`

		// Dirs are the resolved storage roots. Not read from the file.
		Dirs Dirs `mapstructure:"-"`
	}

	// LogConfig configures the root logger.
	LogConfig struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	// Dirs are the per-user storage roots, already suffixed with the
	// application name. An empty field means the platform gave no directory.
	Dirs struct {
		Config string
		Data   string
	}
)

// Error implements the error interface.
func (e *InvalidRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: %s, %s, %s)", e.Value, RuntimeAuto, RuntimeNative, RuntimeVirtual)
}

// Unwrap returns ErrInvalidRuntimeMode so callers can use errors.Is for programmatic detection.
func (e *InvalidRuntimeModeError) Unwrap() error { return ErrInvalidRuntimeMode }

// Validate returns nil if the RuntimeMode is one of the defined modes.
// The zero value is valid and means RuntimeAuto.
func (m RuntimeMode) Validate() error {
	switch m {
	case "", RuntimeAuto, RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return &InvalidRuntimeModeError{Value: m}
	}
}

// String returns the string representation of the RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	return c.Runtime.Validate()
}

// DefaultConfig returns the settings used when no settings file exists.
// Directory lists are derived from dirs; a missing root is skipped.
func DefaultConfig(dirs Dirs) *Config {
	return &Config{
		PluginDirs: dirs.searchPath(PluginsDirName),
		ThemeDirs:  dirs.searchPath(ThemesDirName),
		Runtime:    RuntimeAuto,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Dirs: dirs,
	}
}

// PluginInstallRoot is where installed plugins are copied to.
func (d Dirs) PluginInstallRoot() (string, error) {
	if d.Config == "" {
		return "", ErrDirUnavailable
	}
	return filepath.Join(d.Config, PluginsDirName), nil
}

// ThemeSaveDir is where saved themes are written to.
func (d Dirs) ThemeSaveDir() (string, error) {
	if d.Config == "" {
		return "", ErrDirUnavailable
	}
	return filepath.Join(d.Config, ThemesDirName), nil
}

// ConfigFile is the default location of the configuration document.
func (d Dirs) ConfigFile() (string, error) {
	if d.Config == "" {
		return "", ErrDirUnavailable
	}
	return filepath.Join(d.Config, ConfigDocumentName), nil
}

// searchPath returns <config>/<sub>, <data>/<sub>, ./<sub>.
func (d Dirs) searchPath(sub string) []string {
	var out []string
	if d.Config != "" {
		out = append(out, filepath.Join(d.Config, sub))
	}
	if d.Data != "" {
		out = append(out, filepath.Join(d.Data, sub))
	}
	return append(out, filepath.Join(".", sub))
}
