// SPDX-License-Identifier: MPL-2.0

package hyprconf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyprsupreme/hyprsupreme/internal/format"
)

// Template names accepted by Init.
const (
	TemplateDefault = "default"
	TemplateMinimal = "minimal"
)

// Save writes the document to path, choosing TOML or JSON from the extension.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return format.WriteFile(path, c)
}

// Init writes a starter hyprsupreme.toml into dir and returns its path.
// An existing document is never overwritten.
func Init(dir, template string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("configuration already exists: %s", path)
	}

	var cfg *Config
	switch template {
	case "", TemplateDefault:
		cfg = DefaultConfig()
	case TemplateMinimal:
		cfg = New()
		cfg.Profiles[DefaultProfileName] = Profile{Variables: map[string]string{}}
	default:
		return "", fmt.Errorf("unknown template %q (expected %q or %q)", template, TemplateDefault, TemplateMinimal)
	}

	if err := cfg.Save(path); err != nil {
		return "", err
	}
	return path, nil
}
