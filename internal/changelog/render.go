package changelog

import (
	"fmt"
	"io"
	"strings"
)

// RenderMarkdown writes the changelog as a Keep a Changelog formatted
// markdown document. Output is deterministic: the same input always
// produces identical bytes, which is what `relver changelog check` relies on.
func RenderMarkdown(c *Changelog, w io.Writer) error {
	if err := renderHeader(c, w); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	for i := range c.Versions {
		if err := renderVersion(&c.Versions[i], w, i == 0); err != nil {
			return fmt.Errorf("rendering version %s: %w", c.Versions[i].Version, err)
		}
	}

	if err := renderCompareLinks(c, w); err != nil {
		return fmt.Errorf("rendering comparison links: %w", err)
	}
	return nil
}

// RenderMarkdownString renders to a string.
func RenderMarkdownString(c *Changelog) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(c, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderHeader(c *Changelog, w io.Writer) error {
	header := `# Changelog

All notable changes to ` + c.Project + ` will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

`
	_, err := io.WriteString(w, header)
	return err
}

func renderVersion(v *Version, w io.Writer, isFirst bool) error {
	if !isFirst {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	var header string
	if v.IsUnreleased() {
		header = "## [Unreleased]"
	} else {
		header = fmt.Sprintf("## [%s] - %s", v.Version, v.Date)
	}
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return err
	}

	changes := v.Changes
	for _, cat := range changes.byCategory() {
		if len(*cat.Entries) == 0 {
			continue
		}
		if _, err := io.WriteString(w, "\n### "+titleCase(cat.Name)+"\n"); err != nil {
			return err
		}
		for _, entry := range *cat.Entries {
			if _, err := io.WriteString(w, "- "+entry+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderCompareLinks writes the reference-style comparison links at the end
// of the document. Skipped entirely when the changelog has no repository URL.
func renderCompareLinks(c *Changelog, w io.Writer) error {
	if c.Repository == "" || len(c.Versions) == 0 {
		return nil
	}

	repo := strings.TrimSuffix(c.Repository, "/")
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	for i, v := range c.Versions {
		var link string
		switch {
		case v.IsUnreleased() && i+1 < len(c.Versions):
			link = fmt.Sprintf("[Unreleased]: %s/compare/v%s...HEAD", repo, c.Versions[i+1].Version)
		case v.IsUnreleased():
			// Unreleased with no prior release has nothing to compare against.
			continue
		case i+1 < len(c.Versions):
			link = fmt.Sprintf("[%s]: %s/compare/v%s...v%s", v.Version, repo, c.Versions[i+1].Version, v.Version)
		default:
			link = fmt.Sprintf("[%s]: %s/releases/tag/v%s", v.Version, repo, v.Version)
		}
		if _, err := io.WriteString(w, link+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
