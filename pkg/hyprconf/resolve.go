// SPDX-License-Identifier: MPL-2.0

package hyprconf

import (
	"regexp"
	"strings"
)

// placeholderPattern matches ${name} tokens.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}`)

// ResolveVariables substitutes every ${name} placeholder in input.
//
// Values come from the profile (the default profile when profile is empty)
// and then from the global variables; unknown names resolve to "". A
// replacement may itself contain placeholders, which are resolved on later
// iterations. Each name is attempted at most once per call: meeting a name a
// second time stops resolution and returns the string with the remaining
// placeholders intact.
//
// If the profile does not exist, input is returned unchanged.
func (c *Config) ResolveVariables(input, profile string) string {
	p, err := c.ActiveProfile(profile)
	if err != nil {
		return input
	}

	result := input
	attempted := make(map[string]struct{})

	for {
		m := placeholderPattern.FindStringSubmatch(result)
		if m == nil {
			break
		}
		token, name := m[0], m[1]

		if _, seen := attempted[name]; seen {
			break
		}
		attempted[name] = struct{}{}

		result = strings.ReplaceAll(result, token, c.lookup(p, name))
	}

	return result
}

// Placeholders returns the distinct placeholder names in s, in order of first
// appearance.
func Placeholders(s string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

func (c *Config) lookup(p *Profile, name string) string {
	if v, ok := p.Variables[name]; ok {
		return v
	}
	return c.Variables[name]
}
