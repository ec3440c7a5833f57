// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/hyprsupreme/hyprsupreme/internal/issue"
)

func TestRuntimeMode_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode    RuntimeMode
		wantErr bool
	}{
		{"", false},
		{RuntimeAuto, false},
		{RuntimeNative, false},
		{RuntimeVirtual, false},
		{"container", true},
		{"NATIVE", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()
			err := tt.mode.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRuntimeMode) {
				t.Errorf("error should wrap ErrInvalidRuntimeMode, got %v", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(Dirs{Config: "/cfg/hyprsupreme", Data: "/data/hyprsupreme"})

	wantPlugins := []string{
		filepath.Join("/cfg/hyprsupreme", "plugins"),
		filepath.Join("/data/hyprsupreme", "plugins"),
		"plugins",
	}
	if !slices.Equal(cfg.PluginDirs, wantPlugins) {
		t.Errorf("PluginDirs = %v, want %v", cfg.PluginDirs, wantPlugins)
	}
	if len(cfg.ThemeDirs) != 3 || cfg.ThemeDirs[2] != "themes" {
		t.Errorf("ThemeDirs = %v", cfg.ThemeDirs)
	}
	if cfg.Runtime != RuntimeAuto {
		t.Errorf("Runtime = %q", cfg.Runtime)
	}
}

func TestDefaultConfig_MissingRoots(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(Dirs{})
	if !slices.Equal(cfg.PluginDirs, []string{"plugins"}) {
		t.Errorf("PluginDirs = %v", cfg.PluginDirs)
	}
	if _, err := cfg.Dirs.PluginInstallRoot(); !errors.Is(err, ErrDirUnavailable) {
		t.Errorf("PluginInstallRoot() error = %v, want ErrDirUnavailable", err)
	}
	if _, err := cfg.Dirs.ThemeSaveDir(); !errors.Is(err, ErrDirUnavailable) {
		t.Errorf("ThemeSaveDir() error = %v, want ErrDirUnavailable", err)
	}
	if _, err := cfg.Dirs.ConfigFile(); !errors.Is(err, ErrDirUnavailable) {
		t.Errorf("ConfigFile() error = %v, want ErrDirUnavailable", err)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-only")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != filepath.Join("/tmp/xdg-config", AppName) {
		t.Errorf("ConfigDir() = %q", got)
	}

	got, err = DataDir()
	if err != nil {
		t.Fatalf("DataDir() error = %v", err)
	}
	if got != filepath.Join("/tmp/xdg-data", AppName) {
		t.Errorf("DataDir() = %q", got)
	}
}

func TestDirOverrides(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/override/cfg")
	SetDataDirOverride("/override/data")

	d := ResolveDirs()
	if d.Config != "/override/cfg" || d.Data != "/override/data" {
		t.Errorf("ResolveDirs() = %+v", d)
	}

	Reset()
	if configDirOverride != "" || dataDirOverride != "" {
		t.Error("Reset() should clear overrides")
	}
}

func TestProvider_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, DataDirPath: filepath.Join(dir, "data")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Runtime != RuntimeAuto || cfg.Log.Level != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Dirs.Config != dir {
		t.Errorf("Dirs.Config = %q", cfg.Dirs.Config)
	}
	if len(cfg.PluginDirs) != 3 || cfg.PluginDirs[0] != filepath.Join(dir, PluginsDirName) {
		t.Errorf("PluginDirs = %v", cfg.PluginDirs)
	}
}

func TestProvider_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	content := `
profile = "laptop"
theme = "nord"
plugin_dirs = ["/opt/hypr/plugins"]
runtime = "virtual"

[log]
level = "debug"
`
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != "laptop" || cfg.Theme != "nord" {
		t.Errorf("profile/theme = %q/%q", cfg.Profile, cfg.Theme)
	}
	if !slices.Equal(cfg.PluginDirs, []string{"/opt/hypr/plugins"}) {
		t.Errorf("PluginDirs = %v", cfg.PluginDirs)
	}
	if cfg.Runtime != RuntimeVirtual || cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("settings = %+v", cfg)
	}
}

func TestProvider_EnvOverride(t *testing.T) {
	t.Setenv("HYPRSUPREME_RUNTIME", "native")
	t.Setenv("HYPRSUPREME_LOG_LEVEL", "warn")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Runtime != RuntimeNative {
		t.Errorf("Runtime = %q, want native", cfg.Runtime)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestProvider_InvalidRuntime(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(`runtime = "docker"`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !errors.Is(err, ErrInvalidRuntimeMode) {
		t.Fatalf("expected ErrInvalidRuntimeMode, got %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !ae.HasSuggestions() {
		t.Errorf("expected actionable error with suggestions, got %T", err)
	}
}

func TestProvider_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		SettingsFilePath: filepath.Join(t.TempDir(), "nope.toml"),
		ConfigDirPath:    t.TempDir(),
	})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %v", err)
	}
	if ae.Operation != "load settings" {
		t.Errorf("Operation = %q", ae.Operation)
	}
}

func TestProvider_MalformedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("runtime = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir}); err == nil {
		t.Fatal("expected error for malformed settings")
	}
}

func TestProvider_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(Dirs{Config: dir})
	cfg.Theme = "gruvbox"
	cfg.Runtime = RuntimeNative
	cfg.EnabledPlugins = []string{"bar", "core"}

	path, err := Save(cfg)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(dir, "settings.toml") {
		t.Errorf("Save() path = %q", path)
	}

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Theme != "gruvbox" || loaded.Runtime != RuntimeNative {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.EnabledPlugins) != 2 || loaded.EnabledPlugins[0] != "bar" {
		t.Errorf("EnabledPlugins = %v", loaded.EnabledPlugins)
	}
}

func TestEnsureDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := Dirs{Config: filepath.Join(root, "cfg"), Data: filepath.Join(root, "data")}
	if err := EnsureDirs(d); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	for _, p := range []string{
		filepath.Join(d.Config, PluginsDirName),
		filepath.Join(d.Data, ThemesDirName),
	} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Errorf("%s not created", p)
		}
	}
}
