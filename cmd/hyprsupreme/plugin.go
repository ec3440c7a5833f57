// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/issue"
	"github.com/hyprsupreme/hyprsupreme/pkg/plugin"
)

// newPluginCommand creates the `hyprsupreme plugin` command tree.
func newPluginCommand(app *App, flags *rootFlagValues) *cobra.Command {
	pluginCmd := &cobra.Command{
		Use:   "plugin",
		Short: "Manage plugins",
		Long: `Manage plugins.

A plugin is a directory with a plugin.toml (or plugin.json) manifest and
the scripts it names. Plugins are discovered in the configured plugin
directories; enabling a plugin enables its dependencies first, and
disabling one disables everything that depends on it. The set of enabled
plugins is kept in settings.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List discovered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, listPlugins(cmd, app, flags))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show a plugin's manifest and state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, showPlugin(cmd, app, flags, args[0]))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "install <dir>",
		Short: "Copy a plugin directory into the user plugin directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, installPlugin(cmd, app, flags, args[0]))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "uninstall <name>",
		Short: "Remove an installed plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, uninstallPlugin(cmd, app, flags, args[0]))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a plugin and its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, enablePlugin(cmd, app, flags, args[0]))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a plugin and every plugin depending on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, disablePlugin(cmd, app, flags, args[0]))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "run <plugin> <command> [args...]",
		Short: "Run a command of an enabled plugin",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, runPluginCommand(cmd, app, flags, args[0], args[1], args[2:]))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "hook <hook> [args...]",
		Short: "Dispatch a hook to every enabled plugin",
		Long: `Dispatch a hook to every enabled plugin that declares it.

Hooks run in ascending priority order. A failing hook is reported and
skipped; the remaining plugins still run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, runHook(cmd, app, flags, args[0], args[1:]))
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate manifests and the dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, checkPlugins(cmd, app, flags))
		},
	})

	return pluginCmd
}

func listPlugins(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	plugins := pm.Plugins()
	if len(plugins) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No plugins found in: "+listOrNone(s.settings.PluginDirs)))
		return nil
	}

	width := 0
	for _, p := range plugins {
		width = max(width, len(p.Name()))
	}
	for _, p := range plugins {
		fmt.Fprintf(app.stdout, "%s %-*s %-10s %s\n",
			stateMarker(p.State), width, p.Name(), p.Manifest.Version, SubtitleStyle.Render(p.Manifest.Description))
	}
	return nil
}

func showPlugin(cmd *cobra.Command, app *App, flags *rootFlagValues, name string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}
	p, err := pm.Get(name)
	if err != nil {
		return pluginError(s, "show plugin", name, err)
	}
	mf := p.Manifest
	out := app.stdout

	title := mf.Name
	if mf.DisplayName != "" {
		title = mf.DisplayName
	}
	fmt.Fprintf(out, "%s %s\n", TitleStyle.Render(title), SubtitleStyle.Render(mf.Version))
	if mf.Description != "" {
		fmt.Fprintln(out, mf.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("state"), p.State)
	fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("dir"), p.Dir)
	for _, field := range []struct{ key, value string }{
		{"author", mf.Author}, {"license", mf.License}, {"repository", mf.Repository},
	} {
		if field.value != "" {
			fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render(field.key), field.value)
		}
	}

	if len(mf.Dependencies) > 0 {
		fmt.Fprintf(out, "\n%s\n", CmdStyle.Render("dependencies"))
		for _, dep := range mf.DependencyNames() {
			req := mf.Dependencies[dep]
			fmt.Fprintf(out, "  %s %s %s\n", dependencyMarker(pm, dep, req), dep, SubtitleStyle.Render(req))
		}
	}
	if dependents, err := pm.Dependents(name); err == nil && len(dependents) > 0 {
		fmt.Fprintf(out, "\n%s: %s\n", CmdStyle.Render("required by"), strings.Join(dependents, ", "))
	}
	if len(mf.Hooks) > 0 {
		fmt.Fprintf(out, "\n%s\n", CmdStyle.Render("hooks"))
		for _, h := range mf.Hooks {
			fmt.Fprintf(out, "  %-20s %4d  %s\n", h.Name, h.Priority, SubtitleStyle.Render(h.Script))
		}
	}
	if len(mf.Commands) > 0 {
		fmt.Fprintf(out, "\n%s\n", CmdStyle.Render("commands"))
		for _, c := range mf.Commands {
			fmt.Fprintf(out, "  %-20s %s\n", c.Name, SubtitleStyle.Render(c.Description))
		}
	}
	if len(mf.ConfigSchema) > 0 {
		fmt.Fprintf(out, "\n%s: %s\n", CmdStyle.Render("config keys"), strings.Join(slices.Sorted(maps.Keys(mf.ConfigSchema)), ", "))
	}
	return nil
}

func installPlugin(cmd *cobra.Command, app *App, flags *rootFlagValues, dir string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	p, err := pm.Install(dir)
	if err != nil {
		ctx := issue.NewErrorContext().WithOperation("install plugin").WithResource(dir)
		if errors.Is(err, plugin.ErrAlreadyInstalled) {
			ctx.WithSuggestion("Uninstall the existing plugin first: hyprsupreme plugin uninstall <name>")
		} else {
			ctx.WithSuggestion("The directory must contain a plugin.toml or plugin.json manifest")
		}
		return ctx.Wrap(err).BuildError()
	}
	fmt.Fprintf(app.stdout, "%s Installed %s %s to %s\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(p.Name()), p.Manifest.Version, p.Dir)
	fmt.Fprintf(app.stdout, "  Enable it with: hyprsupreme plugin enable %s\n", p.Name())
	return nil
}

func uninstallPlugin(cmd *cobra.Command, app *App, flags *rootFlagValues, name string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	before := pm.Enabled()
	if err := pm.Uninstall(name); err != nil {
		return pluginError(s, "uninstall plugin", name, err)
	}
	if err := persistEnabled(s, pm); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Uninstalled %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name))
	reportDisabled(app.stdout, before, pm.Enabled(), name)
	return nil
}

func enablePlugin(cmd *cobra.Command, app *App, flags *rootFlagValues, name string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	before := pm.Enabled()
	if err := pm.Enable(name); err != nil {
		return issue.NewErrorContext().
			WithOperation("enable plugin").
			WithResource(name).
			WithSuggestion("Run 'hyprsupreme plugin check' to see dependency problems").
			Wrap(err).
			BuildError()
	}
	if err := persistEnabled(s, pm); err != nil {
		return err
	}

	for _, n := range pm.Enabled() {
		if !slices.Contains(before, n) {
			fmt.Fprintf(app.stdout, "%s Enabled %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(n))
		}
	}
	return nil
}

func disablePlugin(cmd *cobra.Command, app *App, flags *rootFlagValues, name string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	before := pm.Enabled()
	if err := pm.Disable(name); err != nil {
		return pluginError(s, "disable plugin", name, err)
	}
	if err := persistEnabled(s, pm); err != nil {
		return err
	}
	reportDisabled(app.stdout, before, pm.Enabled(), "")
	return nil
}

func runPluginCommand(cmd *cobra.Command, app *App, flags *rootFlagValues, name, command string, args []string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	s.logger.Debug("running plugin command", "plugin", name, "command", shellquote.Join(append([]string{command}, args...)...))
	out, err := pm.ExecuteCommand(cmd.Context(), name, command, args...)
	fmt.Fprint(app.stdout, out)
	if err != nil {
		ctx := issue.NewErrorContext().WithOperation("run plugin command").WithResource(name + " " + command)
		switch {
		case errors.Is(err, plugin.ErrNotEnabled):
			ctx.WithSuggestion("Enable it first: hyprsupreme plugin enable " + name)
		case errors.Is(err, plugin.ErrCommandNotFound):
			ctx.WithSuggestion("List its commands with: hyprsupreme plugin show " + name)
		}
		return ctx.Wrap(err).BuildError()
	}
	return nil
}

func runHook(cmd *cobra.Command, app *App, flags *rootFlagValues, hook string, args []string) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	results := pm.ExecuteHook(cmd.Context(), hook, args...)
	if len(results) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No enabled plugin handled "+hook))
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(results)) {
		fmt.Fprintln(app.stdout, TitleStyle.Render(name))
		out := strings.TrimRight(results[name], "\n")
		if out != "" {
			fmt.Fprintln(app.stdout, out)
		}
	}
	return nil
}

func checkPlugins(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	s, err := app.openSession(cmd.Context(), flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(cmd.Context())
	if err != nil {
		return err
	}

	if err := pm.Check(); err != nil {
		return issue.NewErrorContext().
			WithOperation("check plugins").
			WithSuggestion("Install missing dependencies or relax the version requirements").
			WithSuggestion("Break dependency cycles by removing one of the dependencies").
			Wrap(err).
			BuildError()
	}

	order, err := pm.DependencyOrder()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s %d plugin(s), no problems found\n", SuccessStyle.Render("✓"), len(order))
	if len(order) > 0 {
		fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("load order"), strings.Join(order, " → "))
	}
	return nil
}

// persistEnabled records the manager's enable order in settings.
func persistEnabled(s *session, pm *plugin.Manager) error {
	enabled := pm.Enabled()
	if enabled == nil {
		enabled = []string{}
	}
	return s.saveSettings(func(c *config.Config) { c.EnabledPlugins = enabled })
}

// reportDisabled prints every plugin that was enabled before and is not now,
// except skip.
func reportDisabled(w io.Writer, before, after []string, skip string) {
	for _, n := range before {
		if n != skip && !slices.Contains(after, n) {
			fmt.Fprintf(w, "%s Disabled %s\n", WarningStyle.Render("-"), CmdStyle.Render(n))
		}
	}
}

func pluginError(s *session, operation, name string, err error) error {
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(name).
		WithSuggestion("Searched: " + listOrNone(s.settings.PluginDirs)).
		WithSuggestion("List the discovered plugins with: hyprsupreme plugin list").
		Wrap(err).
		BuildError()
}

func stateMarker(st plugin.State) string {
	switch st.Kind {
	case plugin.Enabled:
		return SuccessStyle.Render("●")
	case plugin.Failed:
		return ErrorStyle.Render("✗")
	default:
		return SubtitleStyle.Render("○")
	}
}

func dependencyMarker(pm *plugin.Manager, name, requirement string) string {
	dep, err := pm.Get(name)
	if err != nil {
		return ErrorStyle.Render("✗")
	}
	if ok, err := dep.Manifest.Satisfies(requirement); err != nil || !ok {
		return WarningStyle.Render("!")
	}
	return SuccessStyle.Render("✓")
}
