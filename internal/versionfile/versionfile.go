// Package versionfile locates and rewrites the project version declaration
// inside a version file (package.json, pyproject.toml, setup.py, a VERSION
// file, and similar formats) without disturbing surrounding content.
package versionfile

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const semverBody = `\d+\.\d+\.\d+(?:-[a-zA-Z0-9.-]+)?`

// pattern pairs a compiled regex with a descriptive name. Each regex has
// exactly three capture groups: prefix, version, suffix.
type pattern struct {
	re   *regexp.Regexp
	name string
}

// patterns are tried in priority order: declarations that are almost
// certainly the project's own version come before looser fallbacks, so a
// package.json with pinned dependencies still resolves its root version.
var patterns = []pattern{
	{regexp.MustCompile(`^(\s{0,2}"version"\s*:\s*")v?(` + semverBody + `)(")`), "JSON version field"},
	{regexp.MustCompile(`^(version\s*=\s*["'])v?(` + semverBody + `)(["'])`), "TOML version field"},
	{regexp.MustCompile(`^(__version__\s*=\s*["'])v?(` + semverBody + `)(["'])`), "Python __version__"},
	{regexp.MustCompile(`(?i)^(\s*version\s*[:=]\s*["']?)v?(` + semverBody + `)(["']?,?)\s*$`), "version assignment"},
	{regexp.MustCompile(`(?i)^(VERSION\s*:?=?\s*)v?(` + semverBody + `)()\s*$`), "VERSION declaration"},
	{regexp.MustCompile(`^()v?(` + semverBody + `)()\s*$`), "bare version line"},
}

// Match describes where the project version was found.
type Match struct {
	Line    int    // 1-based line number
	Version string // version without "v" prefix
	Pattern string // name of the matching pattern
	// prefix/suffix are the captured text around the version, kept so a
	// rewrite preserves quoting and spacing exactly.
	prefix   string
	suffix   string
	vPrefix  bool
	lineText string
}

// Discover finds the project version declaration in the file. Patterns are
// tried in priority order across all lines; the first pattern that matches
// anywhere wins, and within a pattern the earliest line wins.
func Discover(path string) (*Match, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading version file %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	for _, p := range patterns {
		for i, line := range lines {
			groups := p.re.FindStringSubmatch(line)
			if groups == nil {
				continue
			}
			return &Match{
				Line:     i + 1,
				Version:  groups[2],
				Pattern:  p.name,
				prefix:   groups[1],
				suffix:   groups[3],
				vPrefix:  strings.Contains(line, "v"+groups[2]),
				lineText: line,
			}, nil
		}
	}

	return nil, fmt.Errorf("no version declaration found in %s", path)
}

// Read returns the current version string from the file.
func Read(path string) (string, error) {
	m, err := Discover(path)
	if err != nil {
		return "", err
	}
	return m.Version, nil
}

// Write replaces the project version in the file with newVersion,
// preserving the original quoting, spacing, and "v" prefix convention.
// newVersion is a bare semver string without the "v" prefix.
func Write(path, newVersion string) error {
	m, err := Discover(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading version file %s: %w", path, err)
	}

	replacement := newVersion
	if m.vPrefix {
		replacement = "v" + newVersion
	}

	lines := strings.Split(string(data), "\n")
	if m.Line > len(lines) {
		return fmt.Errorf("version file %s changed while rewriting", path)
	}

	old := m.prefix + versionToken(m) + m.suffix
	updated := m.prefix + replacement + m.suffix
	line := lines[m.Line-1]
	if !strings.Contains(line, old) {
		return fmt.Errorf("version file %s changed while rewriting", path)
	}
	lines[m.Line-1] = strings.Replace(line, old, updated, 1)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat version file %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), info.Mode().Perm())
}

// versionToken reconstructs the exact version text as it appeared in the
// file, including any "v" prefix.
func versionToken(m *Match) string {
	if m.vPrefix {
		return "v" + m.Version
	}
	return m.Version
}
