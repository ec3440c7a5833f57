// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for hyprsupreme.
//
// This package implements the Cobra command hierarchy: configuration
// documents (config), themes (theme), plugins (plugin) and the JSON RPC
// host boundary (rpc). Handlers stay thin and delegate to pkg/hyprconf,
// pkg/theme, pkg/plugin and internal/bridge through a per-invocation
// session built by App.
package cmd
