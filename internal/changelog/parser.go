package changelog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidationError is a changelog schema violation with field context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Load reads and validates a changelog.yml file from the given path.
func Load(path string) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer f.Close()

	return LoadFromReader(f)
}

// LoadFromReader reads and validates a changelog document from an io.Reader.
func LoadFromReader(r io.Reader) (*Changelog, error) {
	var c Changelog

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing changelog YAML: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the changelog back to path as YAML. The write goes through a
// temp file in the same directory so a crash cannot truncate the source.
func (c *Changelog) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding changelog YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing YAML encoder: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing changelog: %w", err)
	}
	return nil
}

// Validate checks the document against the schema constraints: a project
// name, unique versions, at most one unreleased section, semver version
// identifiers, dated releases, and non-empty change entries.
func (c *Changelog) Validate() error {
	if c.Project == "" {
		return &ValidationError{Field: "project", Message: "required field is empty"}
	}

	unreleased := 0
	seen := make(map[string]bool)

	for i := range c.Versions {
		v := &c.Versions[i]
		if err := v.validate(i); err != nil {
			return err
		}

		key := NormalizeVersion(v.Version)
		if seen[key] {
			return &ValidationError{
				Field:   fmt.Sprintf("versions[%d].version", i),
				Message: fmt.Sprintf("duplicate version %q", v.Version),
			}
		}
		seen[key] = true

		if v.IsUnreleased() {
			unreleased++
			if i != 0 {
				return &ValidationError{
					Field:   fmt.Sprintf("versions[%d]", i),
					Message: "unreleased section must be first",
				}
			}
		}
	}

	if unreleased > 1 {
		return &ValidationError{Field: "versions", Message: "only one 'unreleased' section is allowed"}
	}
	return nil
}

func (v *Version) validate(index int) error {
	field := func(suffix string) string {
		return fmt.Sprintf("versions[%d]%s", index, suffix)
	}

	if v.Version == "" {
		return &ValidationError{Field: field(".version"), Message: "required field is empty"}
	}

	if v.IsUnreleased() {
		if v.Date != "" {
			return &ValidationError{Field: field(".date"), Message: "unreleased section must not have a date"}
		}
		// An empty unreleased section is fine; it fills up between releases.
	} else {
		if !semverPattern.MatchString(v.Version) {
			return &ValidationError{
				Field:   field(".version"),
				Message: fmt.Sprintf("invalid semver format %q (expected: X.Y.Z)", v.Version),
			}
		}
		if v.Date == "" {
			return &ValidationError{Field: field(".date"), Message: "date is required for released versions"}
		}
		if !datePattern.MatchString(v.Date) {
			return &ValidationError{
				Field:   field(".date"),
				Message: fmt.Sprintf("invalid date format %q (expected: YYYY-MM-DD)", v.Date),
			}
		}
		if v.Changes.IsEmpty() {
			return &ValidationError{Field: field(".changes"), Message: "at least one change entry is required"}
		}
	}

	changes := v.Changes
	for _, cat := range changes.byCategory() {
		for i, entry := range *cat.Entries {
			if strings.TrimSpace(entry) == "" {
				return &ValidationError{
					Field:   field(fmt.Sprintf(".changes.%s[%d]", cat.Name, i)),
					Message: "change entry cannot be empty",
				}
			}
		}
	}
	return nil
}

// NormalizeVersion strips a leading "v" so "v0.6.0" and "0.6.0" compare equal.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.ToLower(version), "v")
}
