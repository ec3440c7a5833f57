// SPDX-License-Identifier: MPL-2.0

// Package bridge is the boundary between hyprsupreme and an embedding host.
//
// Host exposes the plugin, theme and configuration operations as typed Go
// methods. Call dispatches the same operations by method name with JSON
// params, and Serve runs Call over a line-delimited JSON stream (one
// Request per input line, one Response per output line). Failures are
// reported as {kind, message}.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/hyprsupreme/hyprsupreme/internal/logging"
	"github.com/hyprsupreme/hyprsupreme/pkg/hyprconf"
	"github.com/hyprsupreme/hyprsupreme/pkg/plugin"
	"github.com/hyprsupreme/hyprsupreme/pkg/theme"
)

type (
	// Host bundles the managers a host talks to. Any of them may be nil; calls
	// that need a missing one fail with KindInternal.
	Host struct {
		config  *hyprconf.Config
		profile string
		plugins *plugin.Manager
		themes  *theme.Manager
		logger  *log.Logger

		handlers map[string]handler
	}

	// Options configures a Host.
	Options struct {
		Config *hyprconf.Config
		// Profile is used by ResolveVariables when the caller names none.
		Profile string
		Plugins *plugin.Manager
		Themes  *theme.Manager
		Logger  *log.Logger
	}

	handler func(ctx context.Context, params json.RawMessage) (any, error)
)

// NewHost returns a Host over the given managers.
func NewHost(opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = logging.For("bridge")
	}
	h := &Host{
		config:  opts.Config,
		profile: opts.Profile,
		plugins: opts.Plugins,
		themes:  opts.Themes,
		logger:  logger,
	}
	h.handlers = h.routes()
	return h
}

// Methods returns the served method names in sorted order.
func (h *Host) Methods() []string {
	return slices.Sorted(maps.Keys(h.handlers))
}

// EnablePlugin enables a plugin and its dependencies.
func (h *Host) EnablePlugin(name string) error {
	pm, err := h.pluginManager()
	if err != nil {
		return err
	}
	return pm.Enable(name)
}

// DisablePlugin disables a plugin and its dependents.
func (h *Host) DisablePlugin(name string) error {
	pm, err := h.pluginManager()
	if err != nil {
		return err
	}
	return pm.Disable(name)
}

// ListPlugins returns a summary of every registered plugin.
func (h *Host) ListPlugins() ([]plugin.Summary, error) {
	pm, err := h.pluginManager()
	if err != nil {
		return nil, err
	}
	return pm.Summaries(), nil
}

// GetPlugin returns the summary of one plugin.
func (h *Host) GetPlugin(name string) (plugin.Summary, error) {
	pm, err := h.pluginManager()
	if err != nil {
		return plugin.Summary{}, err
	}
	p, err := pm.Get(name)
	if err != nil {
		return plugin.Summary{}, err
	}
	return p.Summary(), nil
}

// InstallPlugin installs the plugin found in dir.
func (h *Host) InstallPlugin(dir string) (plugin.Summary, error) {
	pm, err := h.pluginManager()
	if err != nil {
		return plugin.Summary{}, err
	}
	p, err := pm.Install(dir)
	if err != nil {
		return plugin.Summary{}, err
	}
	return p.Summary(), nil
}

// UninstallPlugin removes a plugin.
func (h *Host) UninstallPlugin(name string) error {
	pm, err := h.pluginManager()
	if err != nil {
		return err
	}
	return pm.Uninstall(name)
}

// ExecuteCommand runs a command of an enabled plugin and returns its output.
func (h *Host) ExecuteCommand(ctx context.Context, pluginName, command string, args ...string) (string, error) {
	pm, err := h.pluginManager()
	if err != nil {
		return "", err
	}
	return pm.ExecuteCommand(ctx, pluginName, command, args...)
}

// ExecuteHook dispatches a hook and returns plugin name to output.
func (h *Host) ExecuteHook(ctx context.Context, hook string, args ...string) (map[string]string, error) {
	pm, err := h.pluginManager()
	if err != nil {
		return nil, err
	}
	return pm.ExecuteHook(ctx, hook, args...), nil
}

// SetTheme activates a theme.
func (h *Host) SetTheme(name string) error {
	tm, err := h.themeManager()
	if err != nil {
		return err
	}
	return tm.SetActive(name)
}

// ThemeColor returns a color of the active theme.
func (h *Host) ThemeColor(name string) (string, error) {
	tm, err := h.themeManager()
	if err != nil {
		return "", err
	}
	return tm.ActiveColor(name)
}

// ThemeVariable returns a variable of the active theme.
func (h *Host) ThemeVariable(name string) (string, error) {
	tm, err := h.themeManager()
	if err != nil {
		return "", err
	}
	return tm.ActiveVariable(name)
}

// ListThemes returns every theme name found in the theme directories.
func (h *Host) ListThemes() ([]string, error) {
	tm, err := h.themeManager()
	if err != nil {
		return nil, err
	}
	return tm.List(), nil
}

// ReloadTheme reloads the active theme from disk.
func (h *Host) ReloadTheme() error {
	tm, err := h.themeManager()
	if err != nil {
		return err
	}
	return tm.Reload()
}

// ResolveVariables substitutes ${var} placeholders in input. An empty
// profile means the host's profile.
func (h *Host) ResolveVariables(input, profile string) (string, error) {
	if h.config == nil {
		return "", fmt.Errorf("no configuration loaded")
	}
	if profile == "" {
		profile = h.profile
	}
	return h.config.ResolveVariables(input, profile), nil
}

func (h *Host) pluginManager() (*plugin.Manager, error) {
	if h.plugins == nil {
		return nil, fmt.Errorf("plugin manager not configured")
	}
	return h.plugins, nil
}

func (h *Host) themeManager() (*theme.Manager, error) {
	if h.themes == nil {
		return nil, fmt.Errorf("theme manager not configured")
	}
	return h.themes, nil
}

// Call dispatches method with JSON params and returns a JSON-encodable
// result.
func (h *Host) Call(ctx context.Context, method string, params json.RawMessage) (any, error) {
	fn, ok := h.handlers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return fn(ctx, params)
}

// okResult is the result of calls that return nothing else.
var okResult = map[string]bool{"ok": true}

func (h *Host) routes() map[string]handler {
	return map[string]handler{
		MethodPluginEnable: withName(func(_ context.Context, name string) (any, error) {
			return okResult, h.EnablePlugin(name)
		}),
		MethodPluginDisable: withName(func(_ context.Context, name string) (any, error) {
			return okResult, h.DisablePlugin(name)
		}),
		MethodPluginList: func(context.Context, json.RawMessage) (any, error) {
			return h.ListPlugins()
		},
		MethodPluginGet: withName(func(_ context.Context, name string) (any, error) {
			return h.GetPlugin(name)
		}),
		MethodPluginInstall: func(_ context.Context, raw json.RawMessage) (any, error) {
			var p PathParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			return h.InstallPlugin(p.Path)
		},
		MethodPluginUninstall: withName(func(_ context.Context, name string) (any, error) {
			return okResult, h.UninstallPlugin(name)
		}),
		MethodPluginCommand: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var p CommandParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			out, err := h.ExecuteCommand(ctx, p.Plugin, p.Command, p.Args...)
			return map[string]string{"output": out}, err
		},
		MethodPluginHook: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var p HookParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			return h.ExecuteHook(ctx, p.Hook, p.Args...)
		},
		MethodThemeSet: withName(func(_ context.Context, name string) (any, error) {
			return okResult, h.SetTheme(name)
		}),
		MethodThemeColor: withName(func(_ context.Context, name string) (any, error) {
			v, err := h.ThemeColor(name)
			return map[string]string{"value": v}, err
		}),
		MethodThemeVariable: withName(func(_ context.Context, name string) (any, error) {
			v, err := h.ThemeVariable(name)
			return map[string]string{"value": v}, err
		}),
		MethodThemeList: func(context.Context, json.RawMessage) (any, error) {
			return h.ListThemes()
		},
		MethodThemeReload: func(context.Context, json.RawMessage) (any, error) {
			return okResult, h.ReloadTheme()
		},
		MethodConfigResolve: func(_ context.Context, raw json.RawMessage) (any, error) {
			var p ResolveParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			v, err := h.ResolveVariables(p.Input, p.Profile)
			return map[string]string{"value": v}, err
		},
	}
}

func withName(fn func(ctx context.Context, name string) (any, error)) handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p NameParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return fn(ctx, p.Name)
	}
}
