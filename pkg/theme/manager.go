// SPDX-License-Identifier: MPL-2.0

package theme

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/format"
	"github.com/hyprsupreme/hyprsupreme/internal/logging"
)

type (
	// Options configures a Manager.
	Options struct {
		// Dirs are the search directories, highest priority first.
		Dirs []string
		// SaveDir receives themes written by Save. Empty disables saving.
		SaveDir string
		Logger  *log.Logger
	}

	// Manager caches loaded themes and holds the active one.
	//
	// Readers of the active theme never observe a partially updated value:
	// the slot is swapped under mu and values are cloned on the way out.
	Manager struct {
		loader  *Loader
		saveDir string
		logger  *log.Logger

		cacheMu sync.Mutex
		cache   map[string]*Theme

		mu        sync.RWMutex
		active    *Theme
		activeKey string
		// activePath is the file the active theme was loaded from, if any.
		activePath string
	}
)

// NewManager returns a manager searching opts.Dirs.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.For("themes")
	}
	return &Manager{
		loader:  NewLoader(opts.Dirs...),
		saveDir: opts.SaveDir,
		logger:  logger,
		cache:   make(map[string]*Theme),
	}
}

// Loader returns the manager's loader.
func (m *Manager) Loader() *Loader {
	return m.loader
}

// SetActive makes the named theme active, loading it on a cache miss.
// On failure the previous active theme is kept.
func (m *Manager) SetActive(name string) error {
	t, path, err := m.get(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.active = t
	m.activeKey = name
	m.activePath = path
	m.mu.Unlock()

	m.logger.Debug("theme activated", "theme", name)
	return nil
}

// Active returns a copy of the active theme.
func (m *Manager) Active() (*Theme, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return nil, false
	}
	return m.active.Clone(), true
}

// ActiveName returns the name the active theme was requested under.
func (m *Manager) ActiveName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeKey
}

// ActivePath returns the file the active theme was loaded from. It is empty
// when no theme is active or the theme only exists in the cache.
func (m *Manager) ActivePath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activePath
}

// ActiveColor returns a color of the active theme.
func (m *Manager) ActiveColor(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return "", ErrNoActiveTheme
	}
	v, ok := m.active.Color(name)
	if !ok {
		return "", &LookupError{Kind: ErrColorNotFound, Name: name}
	}
	return v, nil
}

// ActiveVariable returns a variable of the active theme.
func (m *Manager) ActiveVariable(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return "", ErrNoActiveTheme
	}
	v, ok := m.active.Variable(name)
	if !ok {
		return "", &LookupError{Kind: ErrVariableNotFound, Name: name}
	}
	return v, nil
}

// Reload evicts the active theme from the cache and loads it again from disk.
func (m *Manager) Reload() error {
	name := m.ActiveName()
	if name == "" {
		return ErrNoActiveTheme
	}

	m.cacheMu.Lock()
	delete(m.cache, name)
	m.cacheMu.Unlock()

	if err := m.SetActive(name); err != nil {
		return fmt.Errorf("failed to reload theme %q: %w", name, err)
	}
	m.logger.Info("theme reloaded", "theme", name)
	return nil
}

// List returns every theme name the loader can find.
func (m *Manager) List() []string {
	return m.loader.List()
}

// Create returns a new, unsaved theme.
func (m *Manager) Create(name string) *Theme {
	return New(name)
}

// Save writes t to the save directory as <name>.<ext> and caches it.
func (m *Manager) Save(t *Theme, f format.Format) (string, error) {
	if m.saveDir == "" {
		return "", fmt.Errorf("cannot save theme %q: %w", t.Name, config.ErrDirUnavailable)
	}
	if !filepath.IsLocal(t.Name) {
		return "", &LookupError{Kind: ErrInvalidName, Name: t.Name}
	}

	path := filepath.Join(m.saveDir, t.Name+f.Ext())
	if err := t.Save(path, f); err != nil {
		return "", err
	}

	m.cacheMu.Lock()
	m.cache[t.Name] = t.Clone()
	m.cacheMu.Unlock()

	m.logger.Info("theme saved", "theme", t.Name, "path", path)
	return path, nil
}

// get returns a private copy of the named theme and the file it came from.
func (m *Manager) get(name string) (*Theme, string, error) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	if cached, ok := m.cache[name]; ok {
		path, _ := m.loader.Find(name)
		return cached.Clone(), path, nil
	}

	t, path, err := m.loader.load(name)
	if err != nil {
		return nil, "", err
	}
	m.cache[name] = t
	return t.Clone(), path, nil
}
