// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
)

// Loader scans plugin directories for manifests.
type Loader struct {
	dirs   []string
	logger *log.Logger
}

// NewLoader returns a loader scanning dirs in order.
func NewLoader(logger *log.Logger, dirs ...string) *Loader {
	return &Loader{dirs: slices.Clone(dirs), logger: logger}
}

// Dirs returns the scanned directories in order.
func (l *Loader) Dirs() []string {
	return slices.Clone(l.dirs)
}

// Discover returns one Installed plugin for every immediate subdirectory of
// the configured directories that holds a manifest. Missing directories and
// malformed manifests are logged and skipped. When two directories hold a
// plugin of the same name, the earlier directory wins.
func (l *Loader) Discover(ctx context.Context) ([]*Plugin, error) {
	var found []*Plugin
	seen := make(map[string]string)

	for _, dir := range l.dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				l.logger.Warn("cannot read plugin directory", "dir", dir, "err", err)
			}
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			p, err := loadDir(filepath.Join(dir, entry.Name()))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				l.logger.Warn("skipping plugin", "dir", filepath.Join(dir, entry.Name()), "err", err)
				continue
			}
			if prev, ok := seen[p.Name()]; ok {
				l.logger.Warn("duplicate plugin ignored", "name", p.Name(), "dir", p.Dir, "kept", prev)
				continue
			}
			seen[p.Name()] = p.Dir
			found = append(found, p)
		}
	}

	return found, nil
}

// LoadPlugin loads the plugin stored in the directory called name under the
// first configured directory that has one.
func (l *Loader) LoadPlugin(name string) (*Plugin, error) {
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return nil, &NotFoundError{Name: name}
	}
	for _, dir := range l.dirs {
		p, err := loadDir(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return p, err
	}
	return nil, &NotFoundError{Name: name}
}

func loadDir(dir string) (*Plugin, error) {
	path, err := FindManifest(dir)
	if err != nil {
		return nil, err
	}
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Plugin{Manifest: m, Dir: abs, State: State{Kind: Installed}}, nil
}
