// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/issue"
	"github.com/hyprsupreme/hyprsupreme/internal/logging"
	"github.com/hyprsupreme/hyprsupreme/internal/runtime"
	"github.com/hyprsupreme/hyprsupreme/pkg/hyprconf"
	"github.com/hyprsupreme/hyprsupreme/pkg/plugin"
	"github.com/hyprsupreme/hyprsupreme/pkg/theme"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and opens a
	// session through it.
	App struct {
		Settings  config.Provider
		Executors *runtime.Registry
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Settings  config.Provider
		Executors *runtime.Registry
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// session is the state of one CLI invocation. Managers are built on
	// first use so commands only pay for what they touch.
	session struct {
		app      *App
		flags    *rootFlagValues
		settings *config.Config
		// stored is settings as read, before flag overrides. It is what
		// saveSettings writes back.
		stored *config.Config
		logger *log.Logger

		plugins  *plugin.Manager
		themes   *theme.Manager
		document *hyprconf.Config
		docPath  string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Settings == nil {
		deps.Settings = config.NewProvider()
	}
	if deps.Executors == nil {
		deps.Executors = runtime.DefaultRegistry()
	}

	return &App{
		Settings:  deps.Settings,
		Executors: deps.Executors,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// openSession loads settings, applies the persistent flags on top of them
// and installs the root logger.
func (a *App) openSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	settings, err := a.Settings.Load(ctx, config.LoadOptions{SettingsFilePath: flags.settingsPath})
	if err != nil {
		return nil, err
	}
	stored := *settings

	if flags.runtime != "" {
		mode := config.RuntimeMode(flags.runtime)
		if err := mode.Validate(); err != nil {
			return nil, err
		}
		settings.Runtime = mode
	}
	if flags.profile != "" {
		settings.Profile = flags.profile
	}
	if flags.configPath != "" {
		settings.ConfigFile = flags.configPath
	}

	level := settings.Log.Level
	if flags.verbose {
		level = "debug"
	}
	if _, err := logging.Setup(logging.Options{Level: level, Format: settings.Log.Format, Writer: a.stderr}); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("configure logging").
			WithSuggestion("Set log.level to one of: debug, info, warn, error").
			WithSuggestion("Set log.format to one of: text, json, logfmt").
			Wrap(err).
			BuildError()
	}

	return &session{
		app:      a,
		flags:    flags,
		settings: settings,
		stored:   &stored,
		logger:   logging.For("cli"),
	}, nil
}

// pluginManager discovers plugins and re-enables the ones recorded in
// settings. A plugin that fails to enable is reported and skipped.
func (s *session) pluginManager(ctx context.Context) (*plugin.Manager, error) {
	if s.plugins != nil {
		return s.plugins, nil
	}

	executor, err := s.app.Executors.Get(s.settings.Runtime)
	if err != nil {
		return nil, err
	}
	installRoot, _ := s.settings.Dirs.PluginInstallRoot()

	pm := plugin.NewManager(plugin.Options{
		Dirs:        s.settings.PluginDirs,
		InstallRoot: installRoot,
		Executor:    executor,
		Logger:      logging.For("plugins"),
	})
	if err := pm.Discover(ctx); err != nil {
		return nil, fmt.Errorf("discover plugins: %w", err)
	}
	for _, name := range s.settings.EnabledPlugins {
		if err := pm.Enable(name); err != nil {
			s.logger.Warn("could not enable plugin from settings", "plugin", name, "err", err)
		}
	}

	s.plugins = pm
	return pm, nil
}

// themeManager builds the theme manager and activates the theme recorded
// in settings. A missing theme is reported and leaves no theme active.
func (s *session) themeManager() *theme.Manager {
	if s.themes != nil {
		return s.themes
	}

	saveDir, _ := s.settings.Dirs.ThemeSaveDir()
	tm := theme.NewManager(theme.Options{
		Dirs:    s.settings.ThemeDirs,
		SaveDir: saveDir,
		Logger:  logging.For("themes"),
	})
	if s.settings.Theme != "" {
		if err := tm.SetActive(s.settings.Theme); err != nil {
			s.logger.Warn("could not activate theme from settings", "theme", s.settings.Theme, "err", err)
		}
	}

	s.themes = tm
	return tm
}

// documentPath returns the configuration document this session reads.
func (s *session) documentPath() (string, error) {
	if s.settings.ConfigFile != "" {
		return s.settings.ConfigFile, nil
	}
	return s.settings.Dirs.ConfigFile()
}

// loadDocument loads the configuration document and its imports.
func (s *session) loadDocument() (*hyprconf.Config, string, error) {
	if s.document != nil {
		return s.document, s.docPath, nil
	}

	path, err := s.documentPath()
	if err != nil {
		return nil, "", err
	}
	doc, err := hyprconf.Load(path)
	if err != nil {
		ctx := issue.NewErrorContext().WithOperation("load configuration").WithResource(path)
		if errors.Is(err, fs.ErrNotExist) {
			ctx.WithSuggestion("Create one with: hyprsupreme config init")
		} else {
			ctx.WithSuggestion("Check the document and its imports for TOML or JSON syntax errors")
		}
		return nil, "", ctx.Wrap(err).BuildError()
	}

	s.document, s.docPath = doc, path
	return doc, path, nil
}

// saveSettings applies update to the stored settings and writes them back
// to settings.toml. Flag overrides are not persisted.
func (s *session) saveSettings(update func(*config.Config)) error {
	update(s.stored)
	update(s.settings)
	path, err := config.Save(s.stored)
	if err != nil {
		return err
	}
	s.logger.Debug("settings saved", "path", path)
	return nil
}
