// SPDX-License-Identifier: MPL-2.0

package hyprconf

import "maps"

// Merge folds other into c.
//
// With fillGaps set, existing keys always win: variables and theme colors are
// only added when absent, same-named profiles are unioned, and list sections
// are concatenated. Without it, other wins on every conflicting key and the
// Hyprland block is replaced wholesale unless c already points at a
// config_path.
//
// In both modes other's imports are appended to c.Imports.
func (c *Config) Merge(other *Config, fillGaps bool) {
	if other == nil {
		return
	}
	c.normalize()

	for k, v := range other.Variables {
		if _, exists := c.Variables[k]; fillGaps && exists {
			continue
		}
		c.Variables[k] = v
	}

	for name, incoming := range other.Profiles {
		existing, exists := c.Profiles[name]
		if !fillGaps || !exists {
			c.Profiles[name] = incoming
			continue
		}
		c.Profiles[name] = existing.fill(incoming)
	}

	c.Imports = append(c.Imports, other.Imports...)

	if fillGaps {
		c.Hyprland.fill(other.Hyprland)
	} else if c.Hyprland.ConfigPath == "" {
		c.Hyprland = other.Hyprland.clone()
	}
}

// fill returns p with gaps filled from other; p's values win on conflict.
func (p Profile) fill(other Profile) Profile {
	merged := Profile{
		Variables: maps.Clone(p.Variables),
		Imports:   append(append([]Import(nil), p.Imports...), other.Imports...),
		Hyprland:  p.Hyprland,
	}
	if merged.Variables == nil {
		merged.Variables = make(map[string]string)
	}
	for k, v := range other.Variables {
		if _, exists := merged.Variables[k]; !exists {
			merged.Variables[k] = v
		}
	}
	if merged.Hyprland == nil {
		merged.Hyprland = other.Hyprland
	}
	return merged
}

func (h *HyprlandConfig) fill(other HyprlandConfig) {
	h.Modules = append(h.Modules, other.Modules...)
	if h.Theme == nil {
		h.Theme = make(map[string]string)
	}
	for k, v := range other.Theme {
		if _, exists := h.Theme[k]; !exists {
			h.Theme[k] = v
		}
	}
	h.Keybindings = append(h.Keybindings, other.Keybindings...)
	h.Autostart = append(h.Autostart, other.Autostart...)
}

func (h HyprlandConfig) clone() HyprlandConfig {
	out := h
	out.Modules = append([]Module(nil), h.Modules...)
	out.Theme = maps.Clone(h.Theme)
	if out.Theme == nil {
		out.Theme = make(map[string]string)
	}
	out.Keybindings = append([]Keybinding(nil), h.Keybindings...)
	out.Autostart = append([]Autostart(nil), h.Autostart...)
	return out
}
