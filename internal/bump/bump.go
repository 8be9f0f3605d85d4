// Package bump implements semantic version arithmetic for the seven
// supported bump rules: patch, minor, major and their pre-release variants.
package bump

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Rule identifies how a version should be incremented.
type Rule string

const (
	Patch      Rule = "patch"
	Minor      Rule = "minor"
	Major      Rule = "major"
	Prepatch   Rule = "prepatch"
	Preminor   Rule = "preminor"
	Premajor   Rule = "premajor"
	Prerelease Rule = "prerelease"
)

// Rules returns all valid bump rules in their canonical order.
func Rules() []Rule {
	return []Rule{Patch, Minor, Major, Prepatch, Preminor, Premajor, Prerelease}
}

// ParseRule validates a rule name. Returns an error listing valid rules
// when the name is unknown.
func ParseRule(name string) (Rule, error) {
	for _, r := range Rules() {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown bump rule %q (valid: %s)", name, joinRules())
}

func joinRules() string {
	rules := Rules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// Version is a parsed semantic version. Prerelease holds the dot-separated
// identifiers after the hyphen, empty for a stable release.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

// Parse parses a semver string with or without a leading "v".
func Parse(s string) (Version, error) {
	var v Version

	canonical := s
	if !strings.HasPrefix(canonical, "v") {
		canonical = "v" + canonical
	}
	if !semver.IsValid(canonical) {
		return v, fmt.Errorf("invalid semantic version %q", s)
	}

	// Strip build metadata; it never participates in bumping.
	trimmed := strings.TrimPrefix(canonical, "v")
	if i := strings.Index(trimmed, "+"); i >= 0 {
		trimmed = trimmed[:i]
	}

	core, pre, _ := strings.Cut(trimmed, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v, fmt.Errorf("invalid semantic version %q", s)
	}

	var err error
	if v.Major, err = strconv.Atoi(parts[0]); err != nil {
		return v, fmt.Errorf("invalid major component in %q", s)
	}
	if v.Minor, err = strconv.Atoi(parts[1]); err != nil {
		return v, fmt.Errorf("invalid minor component in %q", s)
	}
	if v.Patch, err = strconv.Atoi(parts[2]); err != nil {
		return v, fmt.Errorf("invalid patch component in %q", s)
	}
	v.Prerelease = pre
	return v, nil
}

// String formats the version without a "v" prefix.
func (v Version) String() string {
	base := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		return base + "-" + v.Prerelease
	}
	return base
}

// Canonical formats the version with the "v" prefix used for git tags
// and semver comparison.
func (v Version) Canonical() string {
	return "v" + v.String()
}

// Apply increments the version according to the rule.
//
// The pre-release rules follow npm-version semantics: premajor/preminor/
// prepatch bump the respective component and start a ".0" pre-release;
// prerelease increments the trailing numeric identifier of an existing
// pre-release, or behaves like prepatch when the version is stable.
func Apply(current Version, rule Rule) (Version, error) {
	next := current

	switch rule {
	case Major:
		next.Major++
		next.Minor = 0
		next.Patch = 0
		next.Prerelease = ""
	case Minor:
		next.Minor++
		next.Patch = 0
		next.Prerelease = ""
	case Patch:
		// Finalizing a pre-release keeps the same patch number.
		if current.Prerelease == "" {
			next.Patch++
		}
		next.Prerelease = ""
	case Premajor:
		next.Major++
		next.Minor = 0
		next.Patch = 0
		next.Prerelease = "0"
	case Preminor:
		next.Minor++
		next.Patch = 0
		next.Prerelease = "0"
	case Prepatch:
		next.Patch++
		next.Prerelease = "0"
	case Prerelease:
		if current.Prerelease == "" {
			next.Patch++
			next.Prerelease = "0"
			break
		}
		next.Prerelease = incrementPrerelease(current.Prerelease)
	default:
		return next, fmt.Errorf("unknown bump rule %q", rule)
	}

	return next, nil
}

// incrementPrerelease bumps the last numeric identifier of a pre-release
// string, or appends ".0" when the last identifier is not numeric.
func incrementPrerelease(pre string) string {
	parts := strings.Split(pre, ".")
	last := parts[len(parts)-1]
	if n, err := strconv.Atoi(last); err == nil {
		parts[len(parts)-1] = strconv.Itoa(n + 1)
		return strings.Join(parts, ".")
	}
	return pre + ".0"
}

// Compare returns -1, 0, or +1 comparing a and b under semver precedence.
func Compare(a, b Version) int {
	return semver.Compare(a.Canonical(), b.Canonical())
}

// Next parses the current version, applies the rule, and enforces that the
// result is strictly greater than the input.
func Next(current string, rule Rule) (Version, error) {
	parsed, err := Parse(current)
	if err != nil {
		return Version{}, err
	}

	next, err := Apply(parsed, rule)
	if err != nil {
		return Version{}, err
	}

	if Compare(next, parsed) <= 0 {
		return Version{}, fmt.Errorf("bump %s did not advance version %s", rule, parsed)
	}
	return next, nil
}
