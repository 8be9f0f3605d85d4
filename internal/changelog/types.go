// Package changelog implements the changelog source of truth for relver.
// Pending change notes accumulate under an "unreleased" section in
// changelog.yml; a release promotes them into a dated version section and
// renders the whole document to Keep a Changelog markdown.
package changelog

import "time"

// UnreleasedID is the version identifier for the pending section.
const UnreleasedID = "unreleased"

// Changelog is the root structure of a changelog.yml file. Versions are
// ordered newest first, with an optional unreleased section at the top.
type Changelog struct {
	// Project is the project name used in the rendered header.
	Project string `yaml:"project"`
	// Repository is the base URL used for version comparison links
	// (e.g., "https://github.com/acme/widget"). Optional.
	Repository string `yaml:"repository,omitempty"`
	Versions   []Version `yaml:"versions"`
}

// Version is a single version section. Version holds a bare semantic
// version ("0.6.0") or UnreleasedID; the CLI normalizes "v" prefixes on
// input. Date (YYYY-MM-DD) is required for released versions and must be
// empty for the unreleased section.
type Version struct {
	Version string  `yaml:"version"`
	Date    string  `yaml:"date,omitempty"`
	Changes Changes `yaml:"changes"`
}

// Changes groups entries by Keep a Changelog category
// (https://keepachangelog.com/en/1.1.0/). Empty categories are omitted.
type Changes struct {
	Added      []string `yaml:"added,omitempty"`
	Changed    []string `yaml:"changed,omitempty"`
	Deprecated []string `yaml:"deprecated,omitempty"`
	Removed    []string `yaml:"removed,omitempty"`
	Fixed      []string `yaml:"fixed,omitempty"`
	Security   []string `yaml:"security,omitempty"`
}

// Entry is a flattened view of a single change with its category and
// version context, used for querying and terminal display.
type Entry struct {
	Text     string
	Category string
	Version  string
}

// Categories lists the valid category names in standard rendering order.
func Categories() []string {
	return []string{"added", "changed", "deprecated", "removed", "fixed", "security"}
}

// byCategory returns pointers to the category slices keyed by name,
// in rendering order. Shared by validation, promotion, and rendering.
func (c *Changes) byCategory() []struct {
	Name    string
	Entries *[]string
} {
	return []struct {
		Name    string
		Entries *[]string
	}{
		{"added", &c.Added},
		{"changed", &c.Changed},
		{"deprecated", &c.Deprecated},
		{"removed", &c.Removed},
		{"fixed", &c.Fixed},
		{"security", &c.Security},
	}
}

// Append adds an entry to the named category. Returns false for an
// unknown category.
func (c *Changes) Append(category, text string) bool {
	for _, cat := range c.byCategory() {
		if cat.Name == category {
			*cat.Entries = append(*cat.Entries, text)
			return true
		}
	}
	return false
}

// IsEmpty returns true when no category has entries.
func (c Changes) IsEmpty() bool {
	return c.Count() == 0
}

// Count returns the total number of entries across all categories.
func (c Changes) Count() int {
	return len(c.Added) + len(c.Changed) + len(c.Deprecated) +
		len(c.Removed) + len(c.Fixed) + len(c.Security)
}

// IsUnreleased reports whether this section holds pending changes.
func (v Version) IsUnreleased() bool {
	return v.Version == UnreleasedID
}

// Entries flattens this version's changes into category order.
func (v Version) Entries() []Entry {
	entries := make([]Entry, 0, v.Changes.Count())
	changes := v.Changes
	for _, cat := range changes.byCategory() {
		for _, text := range *cat.Entries {
			entries = append(entries, Entry{Text: text, Category: cat.Name, Version: v.Version})
		}
	}
	return entries
}

// Today formats a time as a changelog date (YYYY-MM-DD).
func Today(now time.Time) string {
	return now.Format("2006-01-02")
}
