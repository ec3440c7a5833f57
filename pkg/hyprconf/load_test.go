// SPDX-License-Identifier: MPL-2.0

package hyprconf

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, FileName, `
[variables]
terminal = "kitty"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Metadata.Name != defaultName || cfg.Metadata.Version != defaultVersion {
		t.Errorf("metadata defaults not applied: %+v", cfg.Metadata)
	}
	if cfg.DefaultProfile != DefaultProfileName {
		t.Errorf("DefaultProfile = %q", cfg.DefaultProfile)
	}
	if cfg.Variables["terminal"] != "kitty" {
		t.Errorf("variables = %v", cfg.Variables)
	}
}

func TestLoad_FillGapsImport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "shared/colors.toml", `
[variables]
accent = "#ff0000"
bg = "#000000"

[hyprland.theme]
border = "#333333"
`)
	path := writeFile(t, dir, FileName, `
[variables]
accent = "#00ff00"

[[imports]]
path = "shared/colors.toml"
merge = true

[profiles.default.variables]
terminal = "foot"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Variables["accent"] != "#00ff00" {
		t.Errorf("fill-gaps import overwrote accent: %q", cfg.Variables["accent"])
	}
	if cfg.Variables["bg"] != "#000000" {
		t.Errorf("bg not imported: %q", cfg.Variables["bg"])
	}
	if cfg.Hyprland.Theme["border"] != "#333333" {
		t.Errorf("theme not imported: %v", cfg.Hyprland.Theme)
	}
	if len(cfg.Imports) != 0 {
		t.Errorf("processed imports should be consumed: %+v", cfg.Imports)
	}
	if got := cfg.ResolveVariables("${terminal} ${bg}", ""); got != "foot #000000" {
		t.Errorf("ResolveVariables = %q", got)
	}
}

func TestLoad_OverrideImport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "override.json", `{"variables": {"accent": "#0000ff"}}`)
	path := writeFile(t, dir, FileName, `
[variables]
accent = "#00ff00"

[[imports]]
path = "override.json"
merge = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Variables["accent"] != "#0000ff" {
		t.Errorf("override import did not win: %q", cfg.Variables["accent"])
	}
}

func TestLoad_DuplicateImportProcessedOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.toml", `
[variables]
v = "from-a"

[[hyprland.modules]]
name = "a"
path = "a.conf"
`)
	path := writeFile(t, dir, FileName, `
[[imports]]
path = "a.toml"
merge = true

[[imports]]
path = "./a.toml"
merge = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n := len(cfg.Hyprland.Modules); n != 1 {
		t.Errorf("duplicate import merged %d times, want 1", n)
	}
}

func TestLoad_NestedImportsNotExpanded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "deep.toml", `
[variables]
deep = "yes"
`)
	writeFile(t, dir, "mid.toml", `
[variables]
mid = "yes"

[[imports]]
path = "deep.toml"
merge = true
`)
	path := writeFile(t, dir, FileName, `
[[imports]]
path = "mid.toml"
merge = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Variables["mid"] != "yes" {
		t.Errorf("direct import not merged")
	}
	if _, ok := cfg.Variables["deep"]; ok {
		t.Errorf("nested import should not be expanded")
	}
	if len(cfg.Imports) != 1 || cfg.Imports[0].Path != "deep.toml" {
		t.Errorf("nested import entry should be carried: %+v", cfg.Imports)
	}
}

func TestLoad_MissingImportAborts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, FileName, `
[[imports]]
path = "missing.toml"
merge = true
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing import")
	}
	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist cause, got %v", err)
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if !le.Import || !strings.HasSuffix(le.Path, "missing.toml") {
		t.Errorf("LoadError = %+v", le)
	}
}

func TestLoad_MalformedDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, FileName, "[variables\nbroken")

	_, err := Load(path)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Op != "parse" || le.Import || le.Path != path {
		t.Errorf("LoadError = %+v", le)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, ErrLoad) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSaveAndInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := Init(dir, "")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if filepath.Base(path) != FileName {
		t.Errorf("Init() path = %s", path)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Variables["color.accent"] != "#7aa2f7" {
		t.Errorf("default variables not persisted: %v", cfg.Variables)
	}
	if names := cfg.ProfileNames(); len(names) != 2 || names[0] != "default" || names[1] != "laptop" {
		t.Errorf("ProfileNames() = %v", names)
	}

	if _, err := Init(dir, TemplateDefault); err == nil {
		t.Error("Init() should refuse to overwrite")
	}
	if _, err := Init(t.TempDir(), "fancy"); err == nil {
		t.Error("Init() should reject unknown template")
	}
}

func TestActiveProfile(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	p, err := cfg.ActiveProfile("")
	if err != nil {
		t.Fatalf("ActiveProfile() error = %v", err)
	}
	if p.Variables["terminal"] != "kitty" {
		t.Errorf("default profile = %+v", p)
	}

	_, err = cfg.ActiveProfile("gaming")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse("inline.json", []byte(`{"default_profile": "work", "profiles": {"work": {}}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q", cfg.DefaultProfile)
	}
	if cfg.Profiles["work"].Variables == nil {
		t.Error("profile variables should be allocated")
	}
}
