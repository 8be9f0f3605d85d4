package changelog

import (
	"fmt"
	"time"
)

// AddEntry appends a change note to the unreleased section, creating the
// section when the changelog doesn't have one yet.
func (c *Changelog) AddEntry(category, text string) error {
	valid := false
	for _, name := range Categories() {
		if name == category {
			valid = true
			break
		}
	}
	if !valid {
		return &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("unknown category %q (valid: added, changed, deprecated, removed, fixed, security)", category),
		}
	}
	if text == "" {
		return &ValidationError{Field: "text", Message: "change entry cannot be empty"}
	}

	unreleased := c.Unreleased()
	if unreleased == nil {
		c.Versions = append([]Version{{Version: UnreleasedID}}, c.Versions...)
		unreleased = &c.Versions[0]
	}
	unreleased.Changes.Append(category, text)
	return nil
}

// Promote converts the unreleased section into a released version section
// dated at now. Every pending entry moves exactly once; the unreleased
// section is removed. Errors when there are no pending entries or the
// target version already exists.
func (c *Changelog) Promote(version string, now time.Time) error {
	unreleased := c.Unreleased()
	if unreleased == nil || unreleased.Changes.IsEmpty() {
		return &ValidationError{
			Field:   "versions",
			Message: "no unreleased changes to promote",
		}
	}

	normalized := NormalizeVersion(version)
	if !semverPattern.MatchString(normalized) {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("invalid semver format %q", version),
		}
	}
	if _, err := c.GetVersion(normalized); err == nil {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("version %q already exists in changelog", version),
		}
	}

	released := Version{
		Version: normalized,
		Date:    Today(now),
		Changes: unreleased.Changes,
	}

	for i := range c.Versions {
		if c.Versions[i].IsUnreleased() {
			c.Versions[i] = released
			break
		}
	}
	return nil
}
