// SPDX-License-Identifier: MPL-2.0

// Package hyprconf models the layered hyprsupreme configuration document.
//
// A document (usually hyprsupreme.toml) carries global variables, named
// profiles that override them, a list of imports, and the Hyprland specific
// block (modules, theme colors, keybindings, autostart entries).
//
// Loading runs a single import pass: the top-level document's imports are read
// in declaration order and merged into it, either filling gaps (merge = true)
// or overriding (merge = false). Imports declared by imported documents are
// appended to the import list but are not expanded by the same pass.
//
// Strings are resolved on demand with ResolveVariables, which substitutes
// ${name} placeholders from the selected profile first and the global
// variables second.
package hyprconf
