// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error:
// environment and home directory overrides, and fixture trees for plugins,
// themes and configuration documents.
package testutil
