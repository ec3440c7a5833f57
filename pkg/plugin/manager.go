// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/dag"
	"github.com/hyprsupreme/hyprsupreme/internal/logging"
	"github.com/hyprsupreme/hyprsupreme/internal/runtime"
)

type (
	// Options configures a Manager.
	Options struct {
		// Dirs are scanned by Discover, highest priority first.
		Dirs []string
		// InstallRoot receives plugins copied by Install. Empty disables
		// installing.
		InstallRoot string
		// Executor runs hook and command scripts. Nil means the auto executor.
		Executor runtime.Executor
		Logger   *log.Logger
	}

	// Manager is the plugin registry.
	//
	// Every name in the enable order is registered with state Enabled, and
	// appears once. Lifecycle operations take the write lock; hook and
	// command dispatch copy what they need under the read lock and run
	// scripts without holding it.
	Manager struct {
		loader      *Loader
		installRoot string
		executor    runtime.Executor
		logger      *log.Logger

		mu      sync.RWMutex
		plugins map[string]*Plugin
		enabled []string
	}

	hookTarget struct {
		plugin *Plugin
		hook   Hook
	}
)

// NewManager returns an empty registry. Call Discover to populate it.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.For("plugins")
	}
	executor := opts.Executor
	if executor == nil {
		executor = runtime.NewAutoExecutor(runtime.NewNativeExecutor(), runtime.NewVirtualExecutor())
	}
	return &Manager{
		loader:      NewLoader(logger, opts.Dirs...),
		installRoot: opts.InstallRoot,
		executor:    executor,
		logger:      logger,
		plugins:     make(map[string]*Plugin),
	}
}

// Discover scans the plugin directories and registers every plugin found.
// Plugins that are already registered keep their current state.
func (m *Manager) Discover(ctx context.Context) error {
	found, err := m.loader.Discover(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, p := range found {
		if _, ok := m.plugins[p.Name()]; ok {
			continue
		}
		m.plugins[p.Name()] = p
		added++
	}
	m.logger.Debug("discovered plugins", "found", len(found), "registered", added)
	return nil
}

// Load registers the plugin stored in the directory called name, unless a
// plugin of that name is already registered.
func (m *Manager) Load(name string) (*Plugin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.plugins[name]; ok {
		return p.clone(), nil
	}
	p, err := m.loader.LoadPlugin(name)
	if err != nil {
		return nil, err
	}
	if existing, ok := m.plugins[p.Name()]; ok {
		return existing.clone(), nil
	}
	m.plugins[p.Name()] = p
	return p.clone(), nil
}

// Register adds a plugin built by the host. A NotInstalled state becomes
// Installed. Registering a name twice fails with ErrAlreadyInstalled.
func (m *Manager) Register(manifest *Manifest, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plugins[manifest.Name]; ok {
		return &AlreadyInstalledError{Name: manifest.Name, Dir: dir}
	}
	mf := manifest.Clone()
	mf.normalize()
	m.plugins[mf.Name] = &Plugin{Manifest: mf, Dir: dir, State: State{Kind: Installed}}
	return nil
}

// Enable enables name after enabling its dependencies, depth first, in
// sorted dependency order. Dependencies enabled before a failure stay
// enabled.
func (m *Manager) Enable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enable(name, nil)
}

func (m *Manager) enable(name string, chain []string) error {
	p, ok := m.plugins[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if p.IsEnabled() {
		return nil
	}
	if slices.Contains(chain, name) {
		return &DependencyCycleError{Chain: append(slices.Clone(chain), name)}
	}
	chain = append(chain, name)

	for _, depName := range p.Manifest.DependencyNames() {
		req := p.Manifest.Dependencies[depName]
		dep, ok := m.plugins[depName]
		if !ok {
			return &DependencyMissingError{Plugin: name, Dependency: depName}
		}
		ok, err := dep.Manifest.Satisfies(req)
		if err != nil || !ok {
			return &DependencyVersionMismatchError{
				Plugin:      name,
				Dependency:  depName,
				Requirement: req,
				Version:     dep.Manifest.Version,
				Err:         err,
			}
		}
		if err := m.enable(depName, chain); err != nil {
			return err
		}
	}

	p.State = State{Kind: Enabled}
	m.enabled = append(m.enabled, name)
	m.logger.Info("plugin enabled", "name", name)
	return nil
}

// Disable disables name after disabling every registered plugin that
// depends on it, transitively.
func (m *Manager) Disable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plugins[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if !p.IsEnabled() {
		return nil
	}
	m.disable(name, make(map[string]bool))
	return nil
}

// disable cascades through dependents whether or not they are enabled, so
// an inactive plugin in the middle of a chain does not shield the plugins
// above it.
func (m *Manager) disable(name string, visiting map[string]bool) {
	if visiting[name] {
		return
	}
	visiting[name] = true

	for _, dependent := range m.dependents(name) {
		m.disable(dependent, visiting)
	}

	p := m.plugins[name]
	if !p.IsEnabled() {
		return
	}
	p.State = State{Kind: Installed}
	m.enabled = slices.DeleteFunc(m.enabled, func(n string) bool { return n == name })
	m.logger.Info("plugin disabled", "name", name)
}

// dependents returns the sorted names of registered plugins whose manifest
// depends on name.
func (m *Manager) dependents(name string) []string {
	var out []string
	for n, p := range m.plugins {
		if p.Manifest.DependsOn(name) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// Install copies the plugin in srcDir to <install root>/<name> and registers
// it as Installed.
func (m *Manager) Install(srcDir string) (*Plugin, error) {
	manifestPath, err := FindManifest(srcDir)
	if err != nil {
		return nil, fmt.Errorf("install %s: %w: %w", srcDir, ErrNotFound, err)
	}
	manifest, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("install %s: %w", srcDir, err)
	}
	if m.installRoot == "" {
		return nil, fmt.Errorf("install %s: %w", manifest.Name, config.ErrDirUnavailable)
	}
	if !filepath.IsLocal(manifest.Name) || filepath.Base(manifest.Name) != manifest.Name {
		return nil, fmt.Errorf("install %s: invalid plugin name %q", srcDir, manifest.Name)
	}

	target := filepath.Join(m.installRoot, manifest.Name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Lstat(target); err == nil {
		return nil, &AlreadyInstalledError{Name: manifest.Name, Dir: target}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("install %s: %w", manifest.Name, err)
	}
	if existing, ok := m.plugins[manifest.Name]; ok {
		return nil, &AlreadyInstalledError{Name: manifest.Name, Dir: existing.Dir}
	}

	if err := os.MkdirAll(m.installRoot, 0o755); err != nil {
		return nil, fmt.Errorf("install %s: %w", manifest.Name, err)
	}
	if err := copyDir(srcDir, target); err != nil {
		_ = os.RemoveAll(target)
		return nil, fmt.Errorf("install %s: %w", manifest.Name, err)
	}

	p := &Plugin{Manifest: manifest, Dir: target, State: State{Kind: Installed}}
	m.plugins[manifest.Name] = p
	m.logger.Info("plugin installed", "name", manifest.Name, "dir", target)
	return p.clone(), nil
}

// Uninstall disables name (cascading), removes its directory and
// unregisters it.
func (m *Manager) Uninstall(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plugins[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if p.IsEnabled() {
		m.disable(name, make(map[string]bool))
	}
	if err := os.RemoveAll(p.Dir); err != nil {
		return fmt.Errorf("uninstall %s: %w", name, err)
	}
	delete(m.plugins, name)
	m.logger.Info("plugin uninstalled", "name", name)
	return nil
}

// SetError puts name into the error state with message. An enabled plugin
// is disabled first, together with its dependents.
func (m *Manager) SetError(name, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plugins[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if p.IsEnabled() {
		m.disable(name, make(map[string]bool))
	}
	p.State = State{Kind: Failed, Message: message}
	return nil
}

// ExecuteHook runs hook on every enabled plugin that declares it, in
// ascending priority. Equal priorities run in enable order. A failing
// script is logged and left out of the result; it never stops the others.
// The result maps plugin names to captured stdout.
func (m *Manager) ExecuteHook(ctx context.Context, hook string, args ...string) map[string]string {
	m.mu.RLock()
	var targets []hookTarget
	for _, name := range m.enabled {
		p := m.plugins[name]
		if h, ok := p.Manifest.Hook(hook); ok {
			targets = append(targets, hookTarget{plugin: p.clone(), hook: h})
		}
	}
	m.mu.RUnlock()

	slices.SortStableFunc(targets, func(a, b hookTarget) int {
		return cmp.Compare(a.hook.Priority, b.hook.Priority)
	})

	results := make(map[string]string, len(targets))
	for _, t := range targets {
		out, err := m.run(ctx, t.plugin, t.hook.Script, args, map[string]string{EnvHook: hook})
		if err != nil {
			m.logger.Warn("hook failed", "hook", hook, "plugin", t.plugin.Name(), "err", err)
			continue
		}
		results[t.plugin.Name()] = out
	}
	return results
}

// ExecuteCommand runs a command of an enabled plugin and returns its stdout.
func (m *Manager) ExecuteCommand(ctx context.Context, plugin, command string, args ...string) (string, error) {
	m.mu.RLock()
	p, ok := m.plugins[plugin]
	if !ok {
		m.mu.RUnlock()
		return "", &NotFoundError{Name: plugin}
	}
	if !p.IsEnabled() {
		m.mu.RUnlock()
		return "", fmt.Errorf("%w: %s", ErrNotEnabled, plugin)
	}
	cmd, ok := p.Manifest.Command(command)
	if !ok {
		m.mu.RUnlock()
		return "", fmt.Errorf("plugin %s: %w: %s", plugin, ErrCommandNotFound, command)
	}
	p = p.clone()
	m.mu.RUnlock()

	out, err := m.run(ctx, p, cmd.Script, args, map[string]string{EnvCommand: command})
	if err != nil {
		se := &ScriptError{Plugin: plugin, Command: command, Err: err}
		var sfe *runtime.ScriptFailedError
		if errors.As(err, &sfe) {
			se.Stderr = sfe.Stderr
		}
		return out, se
	}
	return out, nil
}

func (m *Manager) run(ctx context.Context, p *Plugin, script string, args []string, env map[string]string) (string, error) {
	path, lead, err := resolveScript(p.Dir, script)
	if err != nil {
		return "", err
	}

	req := runtime.NewRequest(path, p.Dir, append(lead, args...)...)
	req.Env[EnvPluginName] = p.Name()
	req.Env[EnvPluginDir] = p.Dir
	req.Env[EnvExecutionID] = req.ExecutionID
	maps.Copy(req.Env, env)

	m.logger.Debug("running script", "plugin", p.Name(), "script", script, "id", req.ExecutionID, "runtime", m.executor.Name())
	res := m.executor.Execute(ctx, req)
	return res.Output, res.Err(script)
}

// Get returns a copy of the named plugin.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plugins[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return p.clone(), nil
}

// Plugins returns copies of every registered plugin sorted by name.
func (m *Manager) Plugins() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Plugin, 0, len(m.plugins))
	for _, name := range slices.Sorted(maps.Keys(m.plugins)) {
		out = append(out, m.plugins[name].clone())
	}
	return out
}

// Summaries returns the host-facing summary of every plugin, sorted by name.
func (m *Manager) Summaries() []Summary {
	plugins := m.Plugins()
	out := make([]Summary, len(plugins))
	for i, p := range plugins {
		out[i] = p.Summary()
	}
	return out
}

// Enabled returns the enabled plugin names in enable order.
func (m *Manager) Enabled() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.enabled)
}

// DependencyOrder returns every registered plugin ordered so that each comes
// after its registered dependencies. Unregistered dependencies are ignored
// here; Check reports them.
func (m *Manager) DependencyOrder() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, err := m.graph().TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDependencyCycle, err)
	}
	return order, nil
}

// Dependents returns the plugins that would be disabled along with name.
func (m *Manager) Dependents(name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.plugins[name]; !ok {
		return nil, &NotFoundError{Name: name}
	}
	return m.graph().Dependents(name), nil
}

// Check validates every manifest and reports missing dependencies, version
// mismatches and cycles. It returns nil when the registry is consistent.
func (m *Manager) Check() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(m.plugins)) {
		mf := m.plugins[name].Manifest
		if err := mf.Validate(); err != nil {
			errs = append(errs, err)
		}
		for _, depName := range mf.DependencyNames() {
			req := mf.Dependencies[depName]
			dep, ok := m.plugins[depName]
			if !ok {
				errs = append(errs, &DependencyMissingError{Plugin: name, Dependency: depName})
				continue
			}
			if ok, err := dep.Manifest.Satisfies(req); err != nil || !ok {
				errs = append(errs, &DependencyVersionMismatchError{
					Plugin: name, Dependency: depName, Requirement: req, Version: dep.Manifest.Version, Err: err,
				})
			}
		}
	}
	if _, err := m.graph().TopologicalSort(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrDependencyCycle, err))
	}
	return errors.Join(errs...)
}

// graph builds the dependency graph of the registered plugins. Callers hold
// at least the read lock.
func (m *Manager) graph() *dag.Graph {
	g := dag.New()
	for _, name := range slices.Sorted(maps.Keys(m.plugins)) {
		g.AddNode(name)
		for _, dep := range m.plugins[name].Manifest.DependencyNames() {
			if _, ok := m.plugins[dep]; ok {
				g.AddEdge(dep, name)
			}
		}
	}
	return g
}
