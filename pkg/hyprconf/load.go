// SPDX-License-Identifier: MPL-2.0

package hyprconf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hyprsupreme/hyprsupreme/internal/format"
)

// ErrLoad is wrapped by every LoadError.
var ErrLoad = errors.New("failed to load configuration")

type (
	// LoadError reports a document (top-level or imported) that could not be
	// read or parsed. It aborts the whole load.
	LoadError struct {
		// Op is "read" or "parse".
		Op   string
		Path string
		// Import is true when Path was reached through an import entry.
		Import bool
		Err    error
	}

	// importPass merges the imports of one top-level document. processed is
	// scoped to a single Load call.
	importPass struct {
		baseDir   string
		processed map[string]struct{}
	}
)

// Error implements the error interface.
func (e *LoadError) Error() string {
	kind := "config"
	if e.Import {
		kind = "import"
	}
	return fmt.Sprintf("failed to %s %s file %s: %v", e.Op, kind, e.Path, e.Err)
}

// Unwrap exposes both ErrLoad and the underlying cause.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// Load reads the document at path and resolves its imports.
func Load(path string) (*Config, error) {
	cfg, err := readDocument(path, false)
	if err != nil {
		return nil, err
	}

	pass := &importPass{
		baseDir:   filepath.Dir(path),
		processed: make(map[string]struct{}),
	}
	if err := pass.run(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes a document from memory without processing imports. name is
// used to pick the format and for error messages.
func Parse(name string, data []byte) (*Config, error) {
	var cfg Config
	if err := format.Decode(name, data, &cfg); err != nil {
		return nil, &LoadError{Op: "parse", Path: name, Err: err}
	}
	cfg.normalize()
	return &cfg, nil
}

// run takes ownership of cfg.Imports and merges each entry in order.
// Imports appended by merged documents stay on cfg.Imports unprocessed.
func (p *importPass) run(cfg *Config) error {
	pending := cfg.Imports
	cfg.Imports = nil

	for _, imp := range pending {
		if err := p.apply(cfg, imp); err != nil {
			return err
		}
	}
	return nil
}

func (p *importPass) apply(cfg *Config, imp Import) error {
	full := imp.Path
	if !filepath.IsAbs(full) {
		full = filepath.Join(p.baseDir, full)
	}
	key, err := filepath.Abs(full)
	if err != nil {
		key = filepath.Clean(full)
	}

	if _, seen := p.processed[key]; seen {
		slog.Debug("skipping already processed import", "path", key)
		return nil
	}
	p.processed[key] = struct{}{}

	imported, err := readDocument(key, true)
	if err != nil {
		return err
	}

	cfg.Merge(imported, imp.Merge)
	return nil
}

func readDocument(path string, imported bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Op: "read", Path: path, Import: imported, Err: err}
	}

	var cfg Config
	if err := format.Decode(path, data, &cfg); err != nil {
		return nil, &LoadError{Op: "parse", Path: path, Import: imported, Err: err}
	}
	cfg.normalize()
	return &cfg, nil
}
