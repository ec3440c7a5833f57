// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/issue"
	"github.com/hyprsupreme/hyprsupreme/pkg/hyprconf"
)

// newConfigCommand creates the `hyprsupreme config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration documents",
		Long: `Manage hyprsupreme configuration documents.

The document (hyprsupreme.toml) is stored in:
  - Linux: ~/.config/hyprsupreme/hyprsupreme.toml
  - macOS: ~/Library/Application Support/hyprsupreme/hyprsupreme.toml
  - Windows: %APPDATA%\hyprsupreme\hyprsupreme.toml

Application settings live next to it in settings.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var template string
	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter configuration document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, initConfig(cmd, app, flags, args, template))
		},
	}
	initCmd.Flags().StringVarP(&template, "template", "t", hyprconf.TemplateDefault,
		fmt.Sprintf("starter template (%s or %s)", hyprconf.TemplateDefault, hyprconf.TemplateMinimal))
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show settings and the loaded configuration document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, showConfig(cmd, app, flags))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "resolve <text>...",
		Short: "Substitute ${variable} placeholders",
		Long: `Substitute ${variable} placeholders in the given text.

Profile variables win over top-level variables. Unknown placeholders
resolve to the empty string. Use --profile to pick a profile other than
the configured default.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, resolveConfig(cmd, app, flags, args))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, showConfigPath(cmd, app, flags))
		},
	})

	return cfgCmd
}

func initConfig(cmd *cobra.Command, app *App, flags *rootFlagValues, args []string, template string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}

	var dir string
	switch {
	case len(args) == 1:
		dir = args[0]
	case flags.configPath != "":
		dir = filepath.Dir(flags.configPath)
	default:
		if dir, err = s.settings.Dirs.ConfigFile(); err != nil {
			return err
		}
		dir = filepath.Dir(dir)
	}

	path, err := hyprconf.Init(dir, template)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(dir).
			WithSuggestion("Remove the existing document or pick another directory").
			Wrap(err).
			BuildError()
	}
	fmt.Fprintf(app.stdout, "%s Created configuration at %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))

	if err := config.EnsureDirs(s.settings.Dirs); err != nil {
		s.logger.Warn("failed to create plugin and theme directories", "err", err)
	}
	return nil
}

func showConfig(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	out := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(out, TitleStyle.Render("Settings"))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("runtime"), valueStyle.Render(s.settings.Runtime.String()))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("theme"), valueOrNone(s.settings.Theme))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("plugin_dirs"), listOrNone(s.settings.PluginDirs))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("theme_dirs"), listOrNone(s.settings.ThemeDirs))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("enabled_plugins"), listOrNone(s.settings.EnabledPlugins))
	fmt.Fprintln(out)

	doc, path, err := s.loadDocument()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, TitleStyle.Render("Configuration"))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("file"), path)
	if doc.Metadata.Name != "" {
		fmt.Fprintf(out, "%s: %s %s\n", keyStyle.Render("name"), valueStyle.Render(doc.Metadata.Name), SubtitleStyle.Render(doc.Metadata.Version))
	}
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("default_profile"), valueStyle.Render(doc.DefaultProfile))

	fmt.Fprintf(out, "%s:\n", keyStyle.Render("profiles"))
	for _, name := range doc.ProfileNames() {
		marker := " "
		if name == activeProfileName(doc, s.settings.Profile) {
			marker = SuccessStyle.Render("*")
		}
		fmt.Fprintf(out, "  %s %s\n", marker, name)
	}

	fmt.Fprintf(out, "%s:\n", keyStyle.Render("variables"))
	if len(doc.Variables) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none)"))
	}
	for _, k := range slices.Sorted(maps.Keys(doc.Variables)) {
		fmt.Fprintf(out, "  %s = %s\n", k, swatch(doc.Variables[k]))
	}
	return nil
}

func resolveConfig(cmd *cobra.Command, app *App, flags *rootFlagValues, args []string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	doc, _, err := s.loadDocument()
	if err != nil {
		return err
	}

	if _, err := doc.ActiveProfile(s.settings.Profile); err != nil {
		return issue.NewErrorContext().
			WithOperation("resolve variables").
			WithResource(activeProfileName(doc, s.settings.Profile)).
			WithSuggestion("Available profiles: " + strings.Join(doc.ProfileNames(), ", ")).
			Wrap(err).
			BuildError()
	}

	fmt.Fprintln(app.stdout, doc.ResolveVariables(strings.Join(args, " "), s.settings.Profile))
	return nil
}

func showConfigPath(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", valueOrNone(s.settings.Dirs.Config))
	fmt.Fprintf(app.stdout, "Data directory: %s\n", valueOrNone(s.settings.Dirs.Data))
	if path, err := s.documentPath(); err == nil {
		fmt.Fprintf(app.stdout, "Configuration: %s\n", path)
	}
	if root, err := s.settings.Dirs.PluginInstallRoot(); err == nil {
		fmt.Fprintf(app.stdout, "Plugins: %s\n", root)
	}
	if dir, err := s.settings.Dirs.ThemeSaveDir(); err == nil {
		fmt.Fprintf(app.stdout, "Themes: %s\n", dir)
	}
	return nil
}

// activeProfileName returns the profile ResolveVariables would use.
func activeProfileName(doc *hyprconf.Config, requested string) string {
	if requested != "" {
		return requested
	}
	return doc.DefaultProfile
}

func valueOrNone(s string) string {
	if s == "" {
		return SubtitleStyle.Render("(none)")
	}
	return s
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return SubtitleStyle.Render("(none)")
	}
	return strings.Join(items, ", ")
}
