// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/hyprsupreme/hyprsupreme/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	// configPath is the hyprsupreme.toml to load instead of the configured one.
	configPath string
	// settingsPath is the settings.toml to load instead of <config dir>/settings.toml.
	settingsPath string
	// profile overrides the profile from settings and the document default.
	profile string
	// runtime overrides the script runtime (auto, native, virtual).
	runtime string
	verbose bool
}

// NewRootCommand builds the command tree over app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "hyprsupreme",
		Short: "Configuration, theme and plugin manager for Hyprland",
		Long: TitleStyle.Render("hyprsupreme") + SubtitleStyle.Render(" - Configuration, theme and plugin manager for Hyprland") + `

hyprsupreme loads layered configuration documents with profiles and
${variable} placeholders, applies color themes, and runs plugins that
hook into the session through shell scripts.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a configuration:   hyprsupreme config init
  2. Pick a theme:             hyprsupreme theme apply nord
  3. Enable a plugin:          hyprsupreme plugin enable waybar-sync

` + SubtitleStyle.Render("Examples:") + `
  hyprsupreme config resolve '${terminal} -e htop'
  hyprsupreme theme list
  hyprsupreme plugin run waybar-sync reload
  hyprsupreme plugin hook startup`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "configuration document (default is <config dir>/hyprsupreme.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.settingsPath, "settings", "", "settings file (default is <config dir>/settings.toml)")
	rootCmd.PersistentFlags().StringVarP(&flags.profile, "profile", "p", "", "configuration profile to resolve variables with")
	rootCmd.PersistentFlags().StringVar(&flags.runtime, "runtime", "", "script runtime: auto, native or virtual")

	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newThemeCommand(app, flags))
	rootCmd.AddCommand(newPluginCommand(app, flags))
	rootCmd.AddCommand(newRPCCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the root command and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	if !verboseMode {
		return err.Error()
	}

	msg := err.Error()
	chain := issue.Chain(err)
	if len(chain) > 1 {
		msg += "\n\nError chain:"
		for depth, e := range chain {
			msg += fmt.Sprintf("\n  %d. %s", depth+1, e.Error())
		}
	}
	return msg
}
