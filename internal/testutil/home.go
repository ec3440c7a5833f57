// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetHomeDir points the platform home variable (USERPROFILE on Windows,
// HOME elsewhere) at dir and returns a restore function.
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()
	if runtime.GOOS == "windows" {
		return MustSetenv(t, "USERPROFILE", dir)
	}
	return MustSetenv(t, "HOME", dir)
}

// SetXDGDirs points XDG_CONFIG_HOME and XDG_DATA_HOME at subdirectories of
// root and returns them with a restore function.
func SetXDGDirs(t testing.TB, root string) (configHome, dataHome string, restore func()) {
	t.Helper()
	configHome = filepath.Join(root, "config")
	dataHome = filepath.Join(root, "data")
	restoreConfig := MustSetenv(t, "XDG_CONFIG_HOME", configHome)
	restoreData := MustSetenv(t, "XDG_DATA_HOME", dataHome)
	return configHome, dataHome, func() {
		restoreData()
		restoreConfig()
	}
}
