// SPDX-License-Identifier: MPL-2.0

// Package runtime executes plugin hook and command scripts.
//
// Three executors are available:
//   - native: spawns the script as a host process
//   - virtual: interprets the script with an embedded POSIX shell (mvdan/sh)
//   - auto: virtual for *.sh/*.bash scripts, native for everything else
//
// Every executor runs the script with the plugin directory as working
// directory, captures stdout and stderr, and reports the exit status in a
// Result. Scripts are not sandboxed.
package runtime
