// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/format"
	"github.com/hyprsupreme/hyprsupreme/internal/logging"
	"github.com/hyprsupreme/hyprsupreme/internal/runtime"
	"github.com/hyprsupreme/hyprsupreme/internal/testutil"
	"github.com/hyprsupreme/hyprsupreme/pkg/hyprconf"
	"github.com/hyprsupreme/hyprsupreme/pkg/plugin"
	"github.com/hyprsupreme/hyprsupreme/pkg/theme"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()

	pluginDir := t.TempDir()
	testutil.WritePlugin(t, pluginDir, testutil.PluginFixture{Name: "core", Version: "1.2.0", Hooks: map[string]int{"startup": 1}})
	testutil.WritePlugin(t, pluginDir, testutil.PluginFixture{
		Name:         "bar",
		Dependencies: map[string]string{"core": "^1.0.0"},
		Hooks:        map[string]int{"startup": 0},
		Commands:     []string{"refresh"},
	})

	themeDir := t.TempDir()
	testutil.WriteTheme(t, themeDir, "nord", map[string]string{"background": "#2e3440"}, map[string]string{"gap": "8"})

	pm := plugin.NewManager(plugin.Options{
		Dirs:        []string{pluginDir},
		InstallRoot: filepath.Join(t.TempDir(), "plugins"),
		Executor:    runtime.NewVirtualExecutor(),
		Logger:      logging.Discard(),
	})
	require.NoError(t, pm.Discover(context.Background()))

	cfg := hyprconf.New()
	cfg.Variables["x"] = "1"
	cfg.Profiles["default"] = hyprconf.Profile{Variables: map[string]string{"x": "2"}}
	cfg.Profiles["other"] = hyprconf.Profile{Variables: map[string]string{}}

	return NewHost(Options{
		Config:  cfg,
		Plugins: pm,
		Themes:  theme.NewManager(theme.Options{Dirs: []string{themeDir}, Logger: logging.Discard()}),
		Logger:  logging.Discard(),
	})
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("POSIX shell scripts")
	}
}

func TestHost_TypedCalls(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	h := newTestHost(t)
	ctx := context.Background()

	require.NoError(t, h.EnablePlugin("bar"))

	list, err := h.ListPlugins()
	require.NoError(t, err)
	assert.Equal(t, []plugin.Summary{{Name: "bar", Version: "1.0.0"}, {Name: "core", Version: "1.2.0"}}, list)

	got, err := h.GetPlugin("core")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", got.Version)

	out, err := h.ExecuteCommand(ctx, "bar", "refresh", "now")
	require.NoError(t, err)
	assert.Equal(t, "bar now\n", out)

	hooks, err := h.ExecuteHook(ctx, "startup")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bar": "bar \n", "core": "core \n"}, hooks)

	require.NoError(t, h.DisablePlugin("core"))
	_, err = h.ExecuteCommand(ctx, "bar", "refresh")
	assert.ErrorIs(t, err, plugin.ErrNotEnabled)

	require.NoError(t, h.SetTheme("nord"))
	color, err := h.ThemeColor("background")
	require.NoError(t, err)
	assert.Equal(t, "#2e3440", color)
	gap, err := h.ThemeVariable("gap")
	require.NoError(t, err)
	assert.Equal(t, "8", gap)
	require.NoError(t, h.ReloadTheme())

	themes, err := h.ListThemes()
	require.NoError(t, err)
	assert.Equal(t, []string{"nord"}, themes)

	v, err := h.ResolveVariables("${x}", "")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	v, err = h.ResolveVariables("${x}", "other")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestHost_MissingManagers(t *testing.T) {
	t.Parallel()

	h := NewHost(Options{Logger: logging.Discard()})
	err := h.EnablePlugin("x")
	require.Error(t, err)
	assert.Equal(t, KindInternal, Classify(err))

	_, err = h.ThemeColor("bg")
	assert.Error(t, err)
	_, err = h.ResolveVariables("${x}", "")
	assert.Error(t, err)
}

func TestHost_Call(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	h := newTestHost(t)
	ctx := context.Background()

	res, err := h.Call(ctx, MethodPluginEnable, json.RawMessage(`{"name":"bar"}`))
	require.NoError(t, err)
	assert.Equal(t, okResult, res)

	res, err = h.Call(ctx, MethodPluginCommand, json.RawMessage(`{"plugin":"bar","command":"refresh","args":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"output": "bar a b\n"}, res)

	res, err = h.Call(ctx, MethodConfigResolve, json.RawMessage(`{"input":"v${x}"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"value": "v2"}, res)

	_, err = h.Call(ctx, "plugin.explode", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = h.Call(ctx, MethodThemeSet, json.RawMessage(`{"name":`))
	assert.ErrorIs(t, err, ErrInvalidParams)

	assert.Contains(t, h.Methods(), MethodThemeReload)
	assert.Len(t, h.Methods(), 14)
}

func TestServe(t *testing.T) {
	skipOnWindows(t)
	t.Parallel()

	h := newTestHost(t)
	in := strings.Join([]string{
		`{"id":1,"method":"plugin.enable","params":{"name":"bar"}}`,
		``,
		`{"id":"two","method":"plugin.hook","params":{"hook":"startup"}}`,
		`{"id":3,"method":"theme.color","params":{"name":"background"}}`,
		`{"id":4,"method":"theme.set","params":{"name":"nord"}}`,
		`{"id":5,"method":"theme.color","params":{"name":"foreground"}}`,
		`not json`,
		`{"id":6}`,
		`{"id":7,"method":"plugin.get","params":{"name":"ghost"}}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, h.Serve(context.Background(), strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 8)

	decode := func(i int) map[string]any {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[i]), &m), lines[i])
		return m
	}
	errKind := func(m map[string]any) string {
		e, ok := m["error"].(map[string]any)
		if !ok {
			return ""
		}
		return e["kind"].(string)
	}

	first := decode(0)
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, map[string]any{"ok": true}, first["result"])

	hook := decode(1)
	assert.Equal(t, "two", hook["id"])
	assert.Equal(t, map[string]any{"bar": "bar \n", "core": "core \n"}, hook["result"])

	assert.Equal(t, string(KindNoActiveTheme), errKind(decode(2)))
	assert.Equal(t, map[string]any{"ok": true}, decode(3)["result"])

	missing := decode(4)
	assert.Equal(t, string(KindNotFound), errKind(missing))
	assert.Contains(t, missing["error"].(map[string]any)["message"], "foreground")

	assert.Equal(t, string(KindInvalidRequest), errKind(decode(5)))
	assert.Equal(t, string(KindInvalidRequest), errKind(decode(6)))
	assert.Equal(t, string(KindNotFound), errKind(decode(7)))
}

func TestServe_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := NewHost(Options{Logger: logging.Discard()})
	err := h.Serve(ctx, strings.NewReader(`{"method":"theme.list"}`+"\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want ErrorKind
	}{
		{&plugin.NotFoundError{Name: "x"}, KindNotFound},
		{fmt.Errorf("plugin p: %w: c", plugin.ErrCommandNotFound), KindNotFound},
		{&plugin.DependencyMissingError{Plugin: "a", Dependency: "b"}, KindDependencyMissing},
		{&plugin.DependencyVersionMismatchError{Plugin: "a", Dependency: "b"}, KindDependencyMismatch},
		{&plugin.DependencyCycleError{Chain: []string{"a", "a"}}, KindDependencyCycle},
		{&plugin.AlreadyInstalledError{Name: "a"}, KindAlreadyInstalled},
		{fmt.Errorf("%w: a", plugin.ErrNotEnabled), KindNotEnabled},
		{&plugin.ScriptError{Plugin: "a", Command: "c"}, KindScriptFailed},
		{fmt.Errorf("%w: %w", runtime.ErrScriptFailed, plugin.ErrScriptNotFound), KindScriptFailed},
		{&theme.LookupError{Kind: theme.ErrColorNotFound, Name: "fg"}, KindNotFound},
		{theme.ErrNoActiveTheme, KindNoActiveTheme},
		{&hyprconf.ProfileNotFoundError{Name: "p"}, KindNotFound},
		{fmt.Errorf("install: %w", config.ErrDirUnavailable), KindDirUnavailable},
		{&format.DecodeError{Path: "a.toml", Err: errors.New("bad")}, KindParse},
		{fmt.Errorf("open: %w", fs.ErrNotExist), KindIO},
		{errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
}

func TestToError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ToError(nil))

	e := ToError(&plugin.NotFoundError{Name: "ghost"})
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Contains(t, e.Message, "ghost")

	pre := &Error{Kind: KindIO, Message: "disk"}
	assert.Same(t, pre, ToError(fmt.Errorf("wrapped: %w", pre)))
}
