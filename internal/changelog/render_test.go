package changelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderedChangelog() *Changelog {
	return &Changelog{
		Project:    "widget",
		Repository: "https://github.com/acme/widget",
		Versions: []Version{
			{
				Version: UnreleasedID,
				Changes: Changes{Changed: []string{"Faster tag scanning"}},
			},
			{
				Version: "1.1.0",
				Date:    "2026-08-25",
				Changes: Changes{
					Added: []string{"New flag"},
					Fixed: []string{"Crash on empty input"},
				},
			},
			{
				Version: "1.0.0",
				Date:    "2026-01-15",
				Changes: Changes{Added: []string{"Initial release"}},
			},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdownString(renderedChangelog())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Changelog\n"))
	assert.Contains(t, out, "All notable changes to widget will be documented")
	assert.Contains(t, out, "## [Unreleased]\n")
	assert.Contains(t, out, "## [1.1.0] - 2026-08-25\n")
	assert.Contains(t, out, "### Added\n- New flag\n")
	assert.Contains(t, out, "### Fixed\n- Crash on empty input\n")
	assert.Contains(t, out, "[Unreleased]: https://github.com/acme/widget/compare/v1.1.0...HEAD")
	assert.Contains(t, out, "[1.1.0]: https://github.com/acme/widget/compare/v1.0.0...v1.1.0")
	assert.Contains(t, out, "[1.0.0]: https://github.com/acme/widget/releases/tag/v1.0.0")

	// Category order follows the Keep a Changelog convention.
	assert.Less(t, strings.Index(out, "### Added"), strings.Index(out, "### Fixed"))
}

func TestRenderMarkdown_Deterministic(t *testing.T) {
	c := renderedChangelog()

	first, err := RenderMarkdownString(c)
	require.NoError(t, err)
	second, err := RenderMarkdownString(c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderMarkdown_NoRepository(t *testing.T) {
	c := renderedChangelog()
	c.Repository = ""

	out, err := RenderMarkdownString(c)
	require.NoError(t, err)
	assert.NotContains(t, out, "compare/")
	assert.NotContains(t, out, "releases/tag/")
}

func TestRenderMarkdown_EmptyUnreleased(t *testing.T) {
	c := &Changelog{
		Project: "widget",
		Versions: []Version{
			{Version: UnreleasedID},
			{Version: "1.0.0", Date: "2026-01-15", Changes: Changes{Added: []string{"Initial release"}}},
		},
	}

	out, err := RenderMarkdownString(c)
	require.NoError(t, err)
	assert.Contains(t, out, "## [Unreleased]\n\n## [1.0.0] - 2026-01-15\n")
}
