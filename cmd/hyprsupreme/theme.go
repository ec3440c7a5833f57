// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/format"
	"github.com/hyprsupreme/hyprsupreme/internal/issue"
	"github.com/hyprsupreme/hyprsupreme/internal/logging"
	"github.com/hyprsupreme/hyprsupreme/internal/watch"
	"github.com/hyprsupreme/hyprsupreme/pkg/theme"
)

// HookThemeChanged is dispatched to enabled plugins with the theme name
// after a theme is applied or reloaded.
const HookThemeChanged = "theme_changed"

type (
	themeCreateFlags struct {
		from      string
		format    string
		author    string
		colors    []string
		variables []string
	}

	// reloadTracker records whether the watcher reloaded the active theme.
	reloadTracker struct {
		*theme.Manager
		reloaded bool
	}
)

// newThemeCommand creates the `hyprsupreme theme` command tree.
func newThemeCommand(app *App, flags *rootFlagValues) *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage color themes",
		Long: `Manage color themes.

Themes are <name>.toml or <name>.json files, or <name>/theme.toml
directories, found in the configured theme directories. The first
directory that has a theme wins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	themeCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, listThemes(cmd, app, flags))
		},
	})

	themeCmd.AddCommand(&cobra.Command{
		Use:   "show [name]",
		Short: "Show the colors and variables of a theme (default: the active theme)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, showTheme(cmd, app, flags, args))
		},
	})

	cf := &themeCreateFlags{}
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a theme in the user theme directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, createTheme(cmd, app, flags, args[0], cf))
		},
	}
	createCmd.Flags().StringVar(&cf.from, "from", "", "copy colors and variables from an existing theme")
	createCmd.Flags().StringVar(&cf.format, "format", string(format.TOML), "file format (toml or json)")
	createCmd.Flags().StringVar(&cf.author, "author", "", "theme author")
	createCmd.Flags().StringArrayVar(&cf.colors, "color", nil, "set a color (name=value), repeatable")
	createCmd.Flags().StringArrayVar(&cf.variables, "var", nil, "set a variable (name=value), repeatable")
	themeCmd.AddCommand(createCmd)

	themeCmd.AddCommand(&cobra.Command{
		Use:   "apply <name>",
		Short: "Make a theme the active theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, applyTheme(cmd, app, flags, args[0]))
		},
	})

	var debounce time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch [name]",
		Short: "Reload the active theme whenever its file changes",
		Long: `Watch the theme directories and reload the active theme whenever its
file changes. Enabled plugins receive the theme_changed hook after each
reload. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, watchThemes(cmd, app, flags, args, debounce))
		},
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before reloading (default 250ms)")
	themeCmd.AddCommand(watchCmd)

	return themeCmd
}

func listThemes(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	tm := s.themeManager()

	names := tm.List()
	if len(names) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No themes found in: "+listOrNone(s.settings.ThemeDirs)))
		return nil
	}

	active := tm.ActiveName()
	for _, name := range names {
		marker := " "
		if name == active {
			marker = SuccessStyle.Render("*")
		}
		fmt.Fprintf(app.stdout, "%s %s\n", marker, name)
	}
	return nil
}

func showTheme(cmd *cobra.Command, app *App, flags *rootFlagValues, args []string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	tm := s.themeManager()

	if len(args) == 1 {
		if err := tm.SetActive(args[0]); err != nil {
			return themeNotFound(s, args[0], err)
		}
	}
	t, ok := tm.Active()
	if !ok {
		return issue.NewErrorContext().
			WithOperation("show theme").
			WithSuggestion("Name a theme, or apply one with: hyprsupreme theme apply <name>").
			Wrap(theme.ErrNoActiveTheme).
			BuildError()
	}

	out := app.stdout
	fmt.Fprintf(out, "%s %s\n", TitleStyle.Render(t.Name), SubtitleStyle.Render(t.Version))
	if t.Description != "" {
		fmt.Fprintln(out, t.Description)
	}
	if t.Author != "" {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("author"), t.Author)
	}
	if path := tm.ActivePath(); path != "" {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("file"), path)
	}

	fmt.Fprintf(out, "\n%s\n", CmdStyle.Render("colors"))
	for _, k := range slices.Sorted(maps.Keys(t.Colors)) {
		fmt.Fprintf(out, "  %-20s %s\n", k, swatch(t.Colors[k]))
	}
	fmt.Fprintf(out, "\n%s\n", CmdStyle.Render("variables"))
	for _, k := range slices.Sorted(maps.Keys(t.Variables)) {
		fmt.Fprintf(out, "  %-20s %s\n", k, t.Variables[k])
	}
	return nil
}

func createTheme(cmd *cobra.Command, app *App, flags *rootFlagValues, name string, cf *themeCreateFlags) error {
	f, err := format.Parse(cf.format)
	if err != nil {
		return err
	}
	colors, err := parseAssignments(cf.colors)
	if err != nil {
		return err
	}
	variables, err := parseAssignments(cf.variables)
	if err != nil {
		return err
	}

	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	tm := s.themeManager()

	t := tm.Create(name)
	if cf.from != "" {
		base, err := tm.Loader().Load(cf.from)
		if err != nil {
			return themeNotFound(s, cf.from, err)
		}
		t.Merge(base)
		t.Name = name
		t.Extends = cf.from
	}
	t.Author = cf.author
	maps.Copy(t.Colors, colors)
	maps.Copy(t.Variables, variables)

	path, err := tm.Save(t, f)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("save theme").
			WithResource(name).
			WithSuggestion("Theme names must be a plain file name without path separators").
			Wrap(err).
			BuildError()
	}
	fmt.Fprintf(app.stdout, "%s Created theme %s at %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name), path)
	return nil
}

func applyTheme(cmd *cobra.Command, app *App, flags *rootFlagValues, name string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	tm := s.themeManager()

	if err := tm.SetActive(name); err != nil {
		return themeNotFound(s, name, err)
	}
	if err := s.saveSettings(func(c *config.Config) { c.Theme = name }); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Applied theme %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name))

	return notifyThemeChanged(cmd.Context(), s, name)
}

func watchThemes(cmd *cobra.Command, app *App, flags *rootFlagValues, args []string, debounce time.Duration) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	tm := s.themeManager()

	if len(args) == 1 {
		if err := tm.SetActive(args[0]); err != nil {
			return themeNotFound(s, args[0], err)
		}
	}
	if _, ok := tm.Active(); !ok {
		return issue.NewErrorContext().
			WithOperation("watch themes").
			WithSuggestion("Name a theme, or apply one with: hyprsupreme theme apply <name>").
			Wrap(theme.ErrNoActiveTheme).
			BuildError()
	}

	tracker := &reloadTracker{Manager: tm}
	reload := watch.ReloadActive(tracker, logging.For("watch"))
	w, err := watch.New(watch.Config{
		Roots:    s.settings.ThemeDirs,
		Debounce: debounce,
		Logger:   logging.For("watch"),
		OnChange: func(ctx context.Context, changed []string) error {
			tracker.reloaded = false
			if err := reload(ctx, changed); err != nil {
				fmt.Fprintf(app.stderr, "%s Reload failed: %v\n", WarningStyle.Render("!"), err)
				return nil
			}
			if !tracker.reloaded {
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Reloaded theme %s\n", VerboseStyle.Render("→"), CmdStyle.Render(tm.ActiveName()))
			if err := notifyThemeChanged(ctx, s, tm.ActiveName()); err != nil {
				fmt.Fprintf(app.stderr, "%s %v\n", WarningStyle.Render("!"), err)
			}
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Watching %s for changes to %s (Ctrl+C to stop)...\n",
		VerboseStyle.Render("→"), strings.Join(w.Roots(), ", "), CmdStyle.Render(tm.ActiveName()))
	return w.Run(cmd.Context())
}

// Reload reloads the active theme and records that it happened.
func (r *reloadTracker) Reload() error {
	if err := r.Manager.Reload(); err != nil {
		return err
	}
	r.reloaded = true
	return nil
}

// notifyThemeChanged dispatches HookThemeChanged to enabled plugins.
func notifyThemeChanged(ctx context.Context, s *session, name string) error {
	pm, err := s.pluginManager(ctx)
	if err != nil {
		return err
	}
	for pluginName, out := range pm.ExecuteHook(ctx, HookThemeChanged, name) {
		s.logger.Debug("theme_changed hook", "plugin", pluginName, "output", strings.TrimSpace(out))
	}
	return nil
}

func themeNotFound(s *session, name string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load theme").
		WithResource(name).
		WithSuggestion("Searched: " + listOrNone(s.settings.ThemeDirs)).
		WithSuggestion("List the available themes with: hyprsupreme theme list").
		Wrap(err).
		BuildError()
}

// parseAssignments parses name=value pairs.
func parseAssignments(items []string) (map[string]string, error) {
	out := make(map[string]string, len(items))
	for _, item := range items {
		k, v, ok := strings.Cut(item, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected name=value)", item)
		}
		out[k] = v
	}
	return out, nil
}
