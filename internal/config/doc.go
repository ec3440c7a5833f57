// SPDX-License-Identifier: MPL-2.0

// Package config handles hyprsupreme's application settings using Viper.
//
// Settings are read from settings.toml in the configuration directory
// (~/.config/hyprsupreme on Linux, ~/Library/Application Support/hyprsupreme
// on macOS, %APPDATA%\hyprsupreme on Windows) and may be overridden with
// HYPRSUPREME_* environment variables. They select the configuration
// document, the plugin and theme search directories, the script runtime and
// logging. The configuration document itself (hyprsupreme.toml) is handled by
// pkg/hyprconf.
package config
