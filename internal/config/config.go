// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/hyprsupreme/hyprsupreme/internal/issue"
)

const (
	// AppName is the application name and the directory name under the
	// platform config and data roots.
	AppName = "hyprsupreme"
	// SettingsFileName is the settings file name (without extension).
	SettingsFileName = "settings"
	// SettingsFileExt is the settings file extension.
	SettingsFileExt = "toml"
	// ConfigDocumentName is the configuration document looked up in the config dir.
	ConfigDocumentName = "hyprsupreme.toml"
	// PluginsDirName is the plugin subdirectory of each storage root.
	PluginsDirName = "plugins"
	// ThemesDirName is the theme subdirectory of each storage root.
	ThemesDirName = "themes"

	// EnvPrefix prefixes environment overrides (HYPRSUPREME_RUNTIME, HYPRSUPREME_LOG_LEVEL).
	EnvPrefix = "HYPRSUPREME"
)

// ConfigDir returns the hyprsupreme configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var base string

	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := homeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, AppName), nil
}

// DataDir returns the hyprsupreme data directory: %LOCALAPPDATA% on Windows,
// ~/Library/Application Support on macOS and $XDG_DATA_HOME (defaulting to
// ~/.local/share) elsewhere.
func DataDir() (string, error) {
	if dataDirOverride != "" {
		return dataDirOverride, nil
	}

	var base string

	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	case "darwin":
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := homeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
	}

	return filepath.Join(base, AppName), nil
}

// ResolveDirs looks up both storage roots. A root the platform cannot
// provide is left empty rather than failing; operations that need it report
// ErrDirUnavailable.
func ResolveDirs() Dirs {
	var d Dirs
	if dir, err := ConfigDir(); err == nil {
		d.Config = dir
	}
	if dir, err := DataDir(); err == nil {
		d.Data = dir
	}
	return d
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: failed to get home directory: %w", ErrDirUnavailable, err)
	}
	if home == "" {
		return "", fmt.Errorf("%w: home directory is empty", ErrDirUnavailable)
	}
	return home, nil
}

// loadWithOptions performs option-driven settings loading without mutating
// package-level state. It returns the settings and the file they were read
// from ("" when only defaults and environment applied).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	dirs := ResolveDirs()
	if opts.ConfigDirPath != "" {
		dirs.Config = opts.ConfigDirPath
	}
	if opts.DataDirPath != "" {
		dirs.Data = opts.DataDirPath
	}

	v := viper.New()

	defaults := DefaultConfig(dirs)
	v.SetDefault("config_file", defaults.ConfigFile)
	v.SetDefault("profile", defaults.Profile)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("plugin_dirs", defaults.PluginDirs)
	v.SetDefault("theme_dirs", defaults.ThemeDirs)
	v.SetDefault("enabled_plugins", defaults.EnabledPlugins)
	v.SetDefault("runtime", string(defaults.Runtime))
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	if opts.SettingsFilePath != "" {
		if !fileExists(opts.SettingsFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(opts.SettingsFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("settings file not found: %s", opts.SettingsFilePath)).
				BuildError()
		}
		resolvedPath = opts.SettingsFilePath
	} else if dirs.Config != "" {
		candidate := filepath.Join(dirs.Config, SettingsFileName+"."+SettingsFileExt)
		if fileExists(candidate) {
			resolvedPath = candidate
		}
		// If no settings file is found, defaults apply (no error).
	}

	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		v.SetConfigType(SettingsFileExt)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid TOML syntax").
				WithSuggestion("Remove the file to fall back to the defaults").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse settings: %w", err)
	}
	cfg.Dirs = dirs

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(resolvedPath).
			WithSuggestion("Set runtime to one of: auto, native, virtual").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDirs creates the config and data roots along with their plugin and
// theme subdirectories.
func EnsureDirs(d Dirs) error {
	for _, root := range []string{d.Config, d.Data} {
		if root == "" {
			continue
		}
		for _, sub := range []string{PluginsDirName, ThemesDirName} {
			if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Join(root, sub), err)
			}
		}
	}
	return nil
}

// Save writes cfg as the settings file of its config dir and returns the path.
func Save(cfg *Config) (string, error) {
	if cfg.Dirs.Config == "" {
		return "", ErrDirUnavailable
	}
	if err := os.MkdirAll(cfg.Dirs.Config, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("config_file", cfg.ConfigFile)
	v.Set("profile", cfg.Profile)
	v.Set("theme", cfg.Theme)
	v.Set("plugin_dirs", cfg.PluginDirs)
	v.Set("theme_dirs", cfg.ThemeDirs)
	v.Set("enabled_plugins", cfg.EnabledPlugins)
	v.Set("runtime", string(cfg.Runtime))
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)

	path := filepath.Join(cfg.Dirs.Config, SettingsFileName+"."+SettingsFileExt)
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write settings file: %w", err)
	}
	return path, nil
}
