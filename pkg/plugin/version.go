// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseRequirement parses a dependency requirement. A bare version such as
// "1.2.0" is read as "^1.2.0"; anything carrying an operator, a wildcard or
// a range is passed to semver unchanged. The empty requirement and "*"
// accept every version.
func ParseRequirement(req string) (*semver.Constraints, error) {
	req = strings.TrimSpace(req)
	if req == "" {
		req = "*"
	}
	if isBareVersion(req) {
		req = "^" + req
	}
	c, err := semver.NewConstraint(req)
	if err != nil {
		return nil, fmt.Errorf("invalid version requirement %q: %w", req, err)
	}
	return c, nil
}

// ParseVersion parses a manifest version.
func ParseVersion(v string) (*semver.Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return sv, nil
}

// Satisfies reports whether version meets requirement.
func Satisfies(version, requirement string) (bool, error) {
	c, err := ParseRequirement(requirement)
	if err != nil {
		return false, err
	}
	v, err := ParseVersion(version)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}

func isBareVersion(req string) bool {
	if strings.ContainsAny(req, "^~<>=!*xX, |") {
		return false
	}
	// Accepts "1" and "1.2" as well as full versions.
	_, err := semver.NewVersion(req)
	return err == nil
}
