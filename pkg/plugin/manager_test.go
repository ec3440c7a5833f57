// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	goruntime "runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/logging"
	"github.com/hyprsupreme/hyprsupreme/internal/runtime"
)

func TestDiscover(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writePlugin(t, first, &Manifest{Name: "alpha", Version: "1.0.0"})
	writePlugin(t, second, &Manifest{Name: "alpha", Version: "9.0.0"})
	writePlugin(t, second, &Manifest{Name: "beta"})

	// Malformed manifest and a directory without one are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(second, "broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(second, "broken", "plugin.toml"), []byte("name = ["), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(second, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(second, "README"), []byte("x"), 0o644))

	m := newTestManager(t, &fakeExecutor{}, first, second, filepath.Join(first, "missing"))

	plugins := m.Plugins()
	require.Len(t, plugins, 2)
	assert.Equal(t, "alpha", plugins[0].Name())
	assert.Equal(t, "1.0.0", plugins[0].Manifest.Version, "earlier directory wins")
	assert.Equal(t, Installed, plugins[0].State.Kind)
	assert.Equal(t, "beta", plugins[1].Name())
}

func TestDiscover_KeepsState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "a"})
	m := newTestManager(t, &fakeExecutor{}, dir)
	require.NoError(t, m.Enable("a"))

	require.NoError(t, m.Discover(context.Background()))
	p, err := m.Get("a")
	require.NoError(t, err)
	assert.True(t, p.IsEnabled())
}

func TestDiscover_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewManager(Options{Dirs: []string{t.TempDir()}, Logger: logging.Discard()})
	assert.ErrorIs(t, m.Discover(ctx), context.Canceled)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "solo"})
	m := NewManager(Options{Dirs: []string{dir}, Logger: logging.Discard()})

	p, err := m.Load("solo")
	require.NoError(t, err)
	assert.Equal(t, "solo", p.Name())
	assert.Equal(t, Installed, p.State.Kind)

	_, err = m.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Load("../solo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnable_DependenciesFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "A", Version: "1.2.0"})
	writePlugin(t, dir, &Manifest{Name: "B", Version: "1.0.0", Dependencies: map[string]string{"A": "^1.0.0"}})
	m := newTestManager(t, &fakeExecutor{}, dir)

	require.NoError(t, m.Enable("B"))
	assert.Equal(t, []string{"A", "B"}, m.Enabled())

	// Enabling again is a no-op.
	require.NoError(t, m.Enable("B"))
	require.NoError(t, m.Enable("A"))
	assert.Equal(t, []string{"A", "B"}, m.Enabled())
}

func TestEnable_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "old", Version: "0.9.0"})
	writePlugin(t, dir, &Manifest{Name: "needs-missing", Dependencies: map[string]string{"ghost": "*"}})
	writePlugin(t, dir, &Manifest{Name: "needs-new", Dependencies: map[string]string{"old": "^1.0.0"}})
	writePlugin(t, dir, &Manifest{Name: "bad-req", Dependencies: map[string]string{"old": "not a version"}})
	m := newTestManager(t, &fakeExecutor{}, dir)

	err := m.Enable("unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	err = m.Enable("needs-missing")
	require.ErrorIs(t, err, ErrDependencyMissing)
	var missing *DependencyMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ghost", missing.Dependency)
	p, _ := m.Get("needs-missing")
	assert.Equal(t, Installed, p.State.Kind, "state unchanged on failure")

	err = m.Enable("needs-new")
	require.ErrorIs(t, err, ErrDependencyVersionMismatch)
	var mismatch *DependencyVersionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "0.9.0", mismatch.Version)
	assert.Equal(t, "^1.0.0", mismatch.Requirement)

	assert.ErrorIs(t, m.Enable("bad-req"), ErrDependencyVersionMismatch)
	assert.Empty(t, m.Enabled())
}

func TestEnable_NoRollback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "a"})
	writePlugin(t, dir, &Manifest{Name: "top", Dependencies: map[string]string{"a": "*", "z": "*"}})
	m := newTestManager(t, &fakeExecutor{}, dir)

	// Dependencies are visited in sorted order: "a" is enabled before "z" fails.
	assert.ErrorIs(t, m.Enable("top"), ErrDependencyMissing)
	assert.Equal(t, []string{"a"}, m.Enabled())
}

func TestEnable_Cycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "x", Dependencies: map[string]string{"y": "*"}})
	writePlugin(t, dir, &Manifest{Name: "y", Dependencies: map[string]string{"z": "*"}})
	writePlugin(t, dir, &Manifest{Name: "z", Dependencies: map[string]string{"x": "*"}})
	writePlugin(t, dir, &Manifest{Name: "self", Dependencies: map[string]string{"self": "*"}})
	m := newTestManager(t, &fakeExecutor{}, dir)

	err := m.Enable("x")
	require.ErrorIs(t, err, ErrDependencyCycle)
	var cycle *DependencyCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"x", "y", "z", "x"}, cycle.Chain)
	assert.Empty(t, m.Enabled())

	assert.ErrorIs(t, m.Enable("self"), ErrDependencyCycle)

	_, err = m.DependencyOrder()
	assert.ErrorIs(t, err, ErrDependencyCycle)
	assert.ErrorIs(t, m.Check(), ErrDependencyCycle)
}

func TestDisable_Cascades(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "base"})
	writePlugin(t, dir, &Manifest{Name: "mid", Dependencies: map[string]string{"base": "*"}})
	writePlugin(t, dir, &Manifest{Name: "top", Dependencies: map[string]string{"mid": "*"}})
	writePlugin(t, dir, &Manifest{Name: "other"})
	m := newTestManager(t, &fakeExecutor{}, dir)

	require.NoError(t, m.Enable("top"))
	require.NoError(t, m.Enable("other"))
	assert.Equal(t, []string{"base", "mid", "top", "other"}, m.Enabled())

	deps, err := m.Dependents("base")
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "top"}, deps)

	require.NoError(t, m.Disable("base"))
	assert.Equal(t, []string{"other"}, m.Enabled())
	for _, name := range []string{"base", "mid", "top"} {
		p, err := m.Get(name)
		require.NoError(t, err)
		assert.Equal(t, Installed, p.State.Kind, name)
	}

	// Disabled already: no-op.
	require.NoError(t, m.Disable("base"))
	assert.ErrorIs(t, m.Disable("ghost"), ErrNotFound)
}

func TestDisable_ThroughFailedMiddle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "base"})
	writePlugin(t, dir, &Manifest{Name: "mid", Dependencies: map[string]string{"base": "*"}})
	writePlugin(t, dir, &Manifest{Name: "top", Dependencies: map[string]string{"mid": "*"}})
	m := newTestManager(t, &fakeExecutor{}, dir)

	require.NoError(t, m.Enable("top"))
	// SetError disables mid's dependents too.
	require.NoError(t, m.SetError("mid", "crashed"))
	assert.Equal(t, []string{"base"}, m.Enabled())

	p, err := m.Get("mid")
	require.NoError(t, err)
	assert.Equal(t, State{Kind: Failed, Message: "crashed"}, p.State)

	require.NoError(t, m.Disable("base"))
	assert.Empty(t, m.Enabled())
	assert.ErrorIs(t, m.SetError("ghost", "x"), ErrNotFound)
}

func TestInstallAndUninstall(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	srcDir := writePlugin(t, src, &Manifest{
		Name:     "pkg",
		Commands: []Command{{Name: "run", Script: "bin/run.sh"}},
	})
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "README.md"), []byte("docs"), 0o644))

	exec := &fakeExecutor{}
	m := newTestManager(t, exec)

	p, err := m.Install(srcDir)
	require.NoError(t, err)
	assert.Equal(t, Installed, p.State.Kind)
	assert.FileExists(t, filepath.Join(p.Dir, "plugin.toml"))
	assert.FileExists(t, filepath.Join(p.Dir, "README.md"))
	assert.FileExists(t, filepath.Join(p.Dir, "bin", "run.sh"))

	_, err = m.Install(srcDir)
	require.ErrorIs(t, err, ErrAlreadyInstalled)
	var already *AlreadyInstalledError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, p.Dir, already.Dir)

	require.NoError(t, m.Enable("pkg"))
	_, err = m.ExecuteCommand(context.Background(), "pkg", "run")
	require.NoError(t, err)

	require.NoError(t, m.Uninstall("pkg"))
	assert.NoDirExists(t, p.Dir)
	assert.Empty(t, m.Enabled())
	_, err = m.Get("pkg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Uninstall("pkg"), ErrNotFound)
}

func TestInstall_Errors(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, &fakeExecutor{})
	_, err := m.Install(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	src := writePlugin(t, t.TempDir(), &Manifest{Name: "p"})
	noRoot := NewManager(Options{Logger: logging.Discard()})
	_, err = noRoot.Install(src)
	assert.ErrorIs(t, err, config.ErrDirUnavailable)
}

func TestUninstall_CascadesToDependents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "lib"})
	writePlugin(t, dir, &Manifest{Name: "app", Dependencies: map[string]string{"lib": "*"}})
	m := newTestManager(t, &fakeExecutor{}, dir)
	require.NoError(t, m.Enable("app"))

	require.NoError(t, m.Uninstall("lib"))
	assert.Empty(t, m.Enabled())
	p, err := m.Get("app")
	require.NoError(t, err)
	assert.Equal(t, Installed, p.State.Kind)
}

func TestExecuteHook_PriorityOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "late", Hooks: []Hook{{Name: "startup", Script: "h.sh", Priority: 10}}})
	writePlugin(t, dir, &Manifest{Name: "early", Hooks: []Hook{{Name: "startup", Script: "h.sh", Priority: -1}}})
	writePlugin(t, dir, &Manifest{Name: "mid", Hooks: []Hook{{Name: "startup", Script: "h.sh"}}})
	writePlugin(t, dir, &Manifest{Name: "other-hook", Hooks: []Hook{{Name: "shutdown", Script: "h.sh"}}})
	writePlugin(t, dir, &Manifest{Name: "disabled", Hooks: []Hook{{Name: "startup", Script: "h.sh", Priority: -50}}})

	exec := &fakeExecutor{}
	m := newTestManager(t, exec, dir)
	for _, name := range []string{"late", "mid", "early", "other-hook"} {
		require.NoError(t, m.Enable(name))
	}

	out := m.ExecuteHook(context.Background(), "startup", "arg1")
	assert.Equal(t, map[string]string{"late": "late", "early": "early", "mid": "mid"}, out)
	assert.Equal(t, []string{"early", "mid", "late"}, exec.plugins())

	req := exec.calls[0]
	assert.Equal(t, []string{"arg1"}, req.Args)
	assert.Equal(t, "startup", req.Env[EnvHook])
	assert.Equal(t, req.ExecutionID, req.Env[EnvExecutionID])
	assert.Equal(t, req.Dir, req.Env[EnvPluginDir])

	assert.Empty(t, m.ExecuteHook(context.Background(), "nobody"))
}

func TestExecuteHook_FailuresAreSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "ok", Hooks: []Hook{{Name: "h", Script: "ok.sh"}}})
	writePlugin(t, dir, &Manifest{Name: "fails", Hooks: []Hook{{Name: "h", Script: "fail.sh", Priority: -1}}})
	writePlugin(t, dir, &Manifest{Name: "nofile", Hooks: []Hook{{Name: "h", Script: "x.sh"}}})
	require.NoError(t, os.Remove(filepath.Join(dir, "nofile", "x.sh")))

	exec := &fakeExecutor{results: map[string]*runtime.Result{
		"ok.sh":   {Output: "fine"},
		"fail.sh": {ExitCode: 3, ErrOutput: "bad"},
	}}
	m := newTestManager(t, exec, dir)
	for _, name := range []string{"ok", "fails", "nofile"} {
		require.NoError(t, m.Enable(name))
	}

	out := m.ExecuteHook(context.Background(), "h")
	assert.Equal(t, map[string]string{"ok": "fine"}, out)
	assert.Equal(t, []string{"fails", "ok"}, exec.plugins())
}

func TestExecuteCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "tool", Commands: []Command{
		{Name: "greet", Script: "bin/greet.sh --loud"},
		{Name: "fail", Script: "bin/fail.sh"},
		{Name: "escape", Script: "../../etc/passwd"},
	}})
	exec := &fakeExecutor{results: map[string]*runtime.Result{
		"greet.sh": {Output: "HELLO"},
		"fail.sh":  {ExitCode: 2, ErrOutput: "it broke\n"},
	}}
	m := newTestManager(t, exec, dir)
	ctx := context.Background()

	_, err := m.ExecuteCommand(ctx, "ghost", "greet")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.ExecuteCommand(ctx, "tool", "greet")
	assert.ErrorIs(t, err, ErrNotEnabled)

	require.NoError(t, m.Enable("tool"))

	_, err = m.ExecuteCommand(ctx, "tool", "nope")
	assert.ErrorIs(t, err, ErrCommandNotFound)

	out, err := m.ExecuteCommand(ctx, "tool", "greet", "world")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", out)
	last := exec.calls[len(exec.calls)-1]
	assert.Equal(t, []string{"--loud", "world"}, last.Args)
	assert.Equal(t, filepath.Join(dir, "tool", "bin", "greet.sh"), last.Script)
	assert.Equal(t, "greet", last.Env[EnvCommand])

	_, err = m.ExecuteCommand(ctx, "tool", "fail")
	require.ErrorIs(t, err, runtime.ErrScriptFailed)
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "it broke", se.Stderr)
	assert.Contains(t, err.Error(), "it broke")

	// Resolution stays inside the plugin directory.
	_, err = m.ExecuteCommand(ctx, "tool", "escape")
	assert.ErrorIs(t, err, ErrScriptNotFound)
	assert.ErrorIs(t, err, runtime.ErrScriptFailed)
}

func TestExecuteCommand_VirtualRuntime(t *testing.T) {
	if goruntime.GOOS == "windows" {
		t.Skip("POSIX shell scripts")
	}
	t.Parallel()

	dir := t.TempDir()
	pdir := writePlugin(t, dir, &Manifest{Name: "shell", Commands: []Command{{Name: "who", Script: "who.sh"}}})
	require.NoError(t, os.WriteFile(filepath.Join(pdir, "who.sh"),
		[]byte("echo \"$HYPRSUPREME_PLUGIN_NAME:$1\"\necho oops >&2\nexit \"${2:-0}\"\n"), 0o755))

	m := newTestManager(t, runtime.NewVirtualExecutor(), dir)
	require.NoError(t, m.Enable("shell"))

	out, err := m.ExecuteCommand(context.Background(), "shell", "who", "x")
	require.NoError(t, err)
	assert.Equal(t, "shell:x\n", out)

	_, err = m.ExecuteCommand(context.Background(), "shell", "who", "x", "4")
	var se *ScriptError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "oops", se.Stderr)
}

func TestDependencyOrderAndCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, &Manifest{Name: "c", Dependencies: map[string]string{"b": "*"}})
	writePlugin(t, dir, &Manifest{Name: "b", Dependencies: map[string]string{"a": "^1"}})
	writePlugin(t, dir, &Manifest{Name: "a", Version: "1.3.0"})
	m := newTestManager(t, &fakeExecutor{}, dir)

	order, err := m.DependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.NoError(t, m.Check())

	writePlugin(t, dir, &Manifest{Name: "d", Dependencies: map[string]string{"a": "^2", "zz": "*"}})
	_, err = m.Load("d")
	require.NoError(t, err)

	err = m.Check()
	assert.ErrorIs(t, err, ErrDependencyVersionMismatch)
	assert.ErrorIs(t, err, ErrDependencyMissing)
	assert.NotErrorIs(t, err, ErrDependencyCycle)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{Logger: logging.Discard()})
	require.NoError(t, m.Register(&Manifest{Name: "host"}, t.TempDir()))
	assert.ErrorIs(t, m.Register(&Manifest{Name: "host"}, t.TempDir()), ErrAlreadyInstalled)

	p, err := m.Get("host")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", p.Manifest.Version)
	assert.Equal(t, []Summary{{Name: "host", Version: "0.1.0"}}, m.Summaries())

	// Get hands out copies.
	p.Manifest.Version = "9.9.9"
	again, _ := m.Get("host")
	assert.Equal(t, "0.1.0", again.Manifest.Version)
}
