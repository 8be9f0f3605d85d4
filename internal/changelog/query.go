package changelog

import (
	"fmt"
	"strings"
)

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version   string
	Available []string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.Available, ", "))
}

// GetVersion retrieves a specific version section. Accepts both "v0.6.0"
// and "0.6.0". Returns VersionNotFoundError if the version doesn't exist.
func (c *Changelog) GetVersion(version string) (*Version, error) {
	normalized := NormalizeVersion(version)
	for i := range c.Versions {
		if NormalizeVersion(c.Versions[i].Version) == normalized {
			return &c.Versions[i], nil
		}
	}
	return nil, &VersionNotFoundError{Version: version, Available: c.ListVersions()}
}

// Unreleased returns the pending section, or nil when there is none.
func (c *Changelog) Unreleased() *Version {
	for i := range c.Versions {
		if c.Versions[i].IsUnreleased() {
			return &c.Versions[i]
		}
	}
	return nil
}

// LatestRelease returns the most recent released version (skipping the
// unreleased section), or nil when nothing has been released.
func (c *Changelog) LatestRelease() *Version {
	for i := range c.Versions {
		if !c.Versions[i].IsUnreleased() {
			return &c.Versions[i]
		}
	}
	return nil
}

// ListVersions returns all version identifiers, newest first.
func (c *Changelog) ListVersions() []string {
	versions := make([]string, len(c.Versions))
	for i, v := range c.Versions {
		versions[i] = v.Version
	}
	return versions
}

// AllEntries flattens every version's entries, newest version first.
func (c *Changelog) AllEntries() []Entry {
	var entries []Entry
	for _, v := range c.Versions {
		entries = append(entries, v.Entries()...)
	}
	return entries
}

// LastN returns up to n most recent entries across all versions.
func (c *Changelog) LastN(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	entries := c.AllEntries()
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}

// EntryCount returns the total number of entries across all versions.
func (c *Changelog) EntryCount() int {
	count := 0
	for _, v := range c.Versions {
		count += v.Changes.Count()
	}
	return count
}
