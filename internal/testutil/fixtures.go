// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// StubScript prints its name and arguments, writes "stderr:<name>" to
// stderr, and exits with $HYPRSUPREME_TEST_EXIT (default 0).
const StubScript = `#!/bin/sh
echo "$HYPRSUPREME_PLUGIN_NAME $*"
echo "stderr:$HYPRSUPREME_PLUGIN_NAME" >&2
exit "${HYPRSUPREME_TEST_EXIT:-0}"
`

// PluginFixture describes a plugin directory to write.
type PluginFixture struct {
	Name    string
	Version string
	// Dependencies maps plugin names to requirements.
	Dependencies map[string]string
	// Hooks maps hook names to priorities. Each hook runs hooks/<name>.sh.
	Hooks map[string]int
	// Commands each run bin/<name>.sh.
	Commands []string
	// Scripts overrides or adds script bodies by relative path.
	Scripts map[string]string
}

// WritePlugin writes <root>/<f.Name> with a plugin.toml and an executable
// script for every hook and command, and returns the plugin directory.
func WritePlugin(t testing.TB, root string, f PluginFixture) string {
	t.Helper()

	version := f.Version
	if version == "" {
		version = "1.0.0"
	}

	var doc strings.Builder
	fmt.Fprintf(&doc, "name = %q\nversion = %q\n", f.Name, version)
	scripts := make(map[string]string)

	for _, hook := range slices.Sorted(maps.Keys(f.Hooks)) {
		script := "hooks/" + hook + ".sh"
		fmt.Fprintf(&doc, "\n[[hooks]]\nname = %q\nscript = %q\npriority = %d\n", hook, script, f.Hooks[hook])
		scripts[script] = StubScript
	}
	for _, cmd := range f.Commands {
		script := "bin/" + cmd + ".sh"
		fmt.Fprintf(&doc, "\n[[commands]]\nname = %q\nscript = %q\n", cmd, script)
		scripts[script] = StubScript
	}
	if len(f.Dependencies) > 0 {
		doc.WriteString("\n[dependencies]\n")
		for _, dep := range slices.Sorted(maps.Keys(f.Dependencies)) {
			fmt.Fprintf(&doc, "%q = %q\n", dep, f.Dependencies[dep])
		}
	}
	maps.Copy(scripts, f.Scripts)

	dir := filepath.Join(root, f.Name)
	MustWriteFile(t, filepath.Join(dir, "plugin.toml"), doc.String(), 0o644)
	for rel, body := range scripts {
		MustWriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), body, 0o755)
	}
	return dir
}

// WriteTheme writes <dir>/<name>.toml with the given colors and variables
// and returns its path.
func WriteTheme(t testing.TB, dir, name string, colors, variables map[string]string) string {
	t.Helper()

	var doc strings.Builder
	fmt.Fprintf(&doc, "name = %q\n", name)
	writeTable(&doc, "colors", colors)
	writeTable(&doc, "variables", variables)
	return MustWriteFile(t, filepath.Join(dir, name+".toml"), doc.String(), 0o644)
}

func writeTable(doc *strings.Builder, table string, kv map[string]string) {
	if len(kv) == 0 {
		return
	}
	fmt.Fprintf(doc, "\n[%s]\n", table)
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		fmt.Fprintf(doc, "%q = %q\n", k, kv[k])
	}
}
