// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
)

// Reloader is the part of theme.Manager needed to hot-reload the active theme.
type Reloader interface {
	ActiveName() string
	ActivePath() string
	Reload() error
}

// ReloadActive returns an OnChange callback that reloads the active theme
// when the file it was loaded from is among the changed paths. Changes to
// other themes are ignored. A failed reload keeps the previous theme active
// and is returned to the watcher, which logs it.
func ReloadActive(r Reloader, logger *log.Logger) func(ctx context.Context, changed []string) error {
	return func(_ context.Context, changed []string) error {
		path := r.ActivePath()
		if path == "" {
			return nil
		}
		path = filepath.Clean(path)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !slices.Contains(changed, path) {
			return nil
		}
		if logger != nil {
			logger.Info("active theme changed on disk", "theme", r.ActiveName(), "path", path)
		}
		return r.Reload()
	}
}
