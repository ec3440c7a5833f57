// SPDX-License-Identifier: MPL-2.0

package theme

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hyprsupreme/hyprsupreme/internal/format"
)

// Loader searches an ordered list of directories for themes.
type Loader struct {
	dirs []string
}

// NewLoader returns a loader searching dirs in order.
func NewLoader(dirs ...string) *Loader {
	return &Loader{dirs: slices.Clone(dirs)}
}

// AddDir appends a search directory.
func (l *Loader) AddDir(dir string) *Loader {
	l.dirs = append(l.dirs, dir)
	return l
}

// Dirs returns the search directories in order.
func (l *Loader) Dirs() []string {
	return slices.Clone(l.dirs)
}

// Find returns the path of the file that defines name.
//
// Each directory is tried in order: flat files first (toml before json),
// then the directory form. The first existing file wins.
func (l *Loader) Find(name string) (string, error) {
	if !filepath.IsLocal(name) || strings.ContainsRune(name, filepath.Separator) {
		return "", &LookupError{Kind: ErrInvalidName, Name: name}
	}

	for _, dir := range l.dirs {
		for _, ext := range format.Extensions {
			if p := filepath.Join(dir, name+"."+ext); isFile(p) {
				return p, nil
			}
		}
		sub := filepath.Join(dir, name)
		if !isDir(sub) {
			continue
		}
		for _, ext := range format.Extensions {
			if p := filepath.Join(sub, FileStem+"."+ext); isFile(p) {
				return p, nil
			}
		}
	}

	return "", &LookupError{Kind: ErrThemeNotFound, Name: name}
}

// Load finds and parses the named theme. A parse failure of the first
// matching file is returned as is; later directories are not consulted.
// A theme file without a name takes the requested name.
func (l *Loader) Load(name string) (*Theme, error) {
	t, _, err := l.load(name)
	return t, err
}

func (l *Loader) load(name string) (*Theme, string, error) {
	path, err := l.Find(name)
	if err != nil {
		return nil, "", err
	}
	t, err := ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if t.Name == "" {
		t.Name = name
	}
	return t, path, nil
}

// List returns the sorted, deduplicated names of every theme reachable from
// the search directories. Missing or unreadable directories are skipped.
func (l *Loader) List() []string {
	var names []string

	for _, dir := range l.dirs {
		if !isDir(dir) {
			continue
		}
		root := filepath.Clean(dir)
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && depth(root, path) >= 2 {
					return fs.SkipDir
				}
				return nil
			}
			if name, ok := themeName(root, path); ok {
				names = append(names, name)
			}
			return nil
		})
	}

	slices.Sort(names)
	return slices.Compact(names)
}

func themeName(root, path string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !slices.Contains(format.Extensions, ext) {
		return "", false
	}
	stem := strings.TrimSuffix(filepath.Base(path), "."+ext)
	if stem != FileStem {
		return stem, true
	}
	parent := filepath.Dir(path)
	if parent == root {
		return "", false
	}
	return filepath.Base(parent), true
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
