package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChangelogYAML = `project: widget
versions:
  - version: unreleased
    changes:
      fixed:
        - Handle empty config files
  - version: 1.0.0
    date: 2026-01-15
    changes:
      added:
        - Initial release
`

func TestRunChangelogAdd_CreatesSource(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd, buf := newTestCommand(t)
	require.NoError(t, runChangelogAdd(cmd, "added", "Support custom tag prefixes"))

	assert.Contains(t, buf.String(), "Added added entry")

	data, err := os.ReadFile("changelog.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "unreleased")
	assert.Contains(t, string(data), "Support custom tag prefixes")
}

func TestRunChangelogAdd_AppendsToExisting(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))

	cmd, buf := newTestCommand(t)
	require.NoError(t, runChangelogAdd(cmd, "security", "Redact tokens from debug output"))

	assert.Contains(t, buf.String(), "2 pending changes")

	data, err := os.ReadFile("changelog.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Redact tokens from debug output")
	assert.Contains(t, string(data), "Handle empty config files")
}

func TestRunChangelogAdd_InvalidCategory(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd, _ := newTestCommand(t)
	err := runChangelogAdd(cmd, "improved", "Faster startup")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArguments, ExitCode(err))
}

func TestRunChangelogAdd_EmptyText(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd, _ := newTestCommand(t)
	err := runChangelogAdd(cmd, "added", "   ")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArguments, ExitCode(err))
}

func TestRunChangelogSync(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))

	cmd, buf := newTestCommand(t)
	require.NoError(t, runChangelogSync(cmd))

	assert.Contains(t, buf.String(), "Wrote CHANGELOG.md")

	data, err := os.ReadFile("CHANGELOG.md")
	require.NoError(t, err)
	md := string(data)
	assert.Contains(t, md, "## [Unreleased]")
	assert.Contains(t, md, "## [1.0.0] - 2026-01-15")
	assert.Contains(t, md, "Handle empty config files")
}

func TestRunChangelogSync_MissingSource(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd, _ := newTestCommand(t)
	err := runChangelogSync(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitMissingPrerequisites, ExitCode(err))
}

func TestRunChangelogCheck_InSync(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))

	cmd, _ := newTestCommand(t)
	require.NoError(t, runChangelogSync(cmd))

	cmd, buf := newTestCommand(t)
	require.NoError(t, runChangelogCheck(cmd))
	assert.Contains(t, buf.String(), "in sync")
}

func TestRunChangelogCheck_OutOfSync(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))
	require.NoError(t, os.WriteFile("CHANGELOG.md", []byte("# stale\n"), 0644))

	cmd, buf := newTestCommand(t)
	err := runChangelogCheck(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, buf.String(), "out of sync")
}

func TestRunChangelogCheck_MissingOutput(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))

	cmd, buf := newTestCommand(t)
	err := runChangelogCheck(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, buf.String(), "does not exist")
}

func TestRunChangelogShow_LastEntries(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))

	changelogPlainFlag = true
	t.Cleanup(func() { changelogPlainFlag = false })

	cmd, buf := newTestCommand(t)
	require.NoError(t, runChangelogShow(cmd, nil))

	assert.Contains(t, buf.String(), "Handle empty config files")
	assert.Contains(t, buf.String(), "Initial release")
}

func TestRunChangelogShow_UnknownVersion(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))

	cmd, buf := newTestCommand(t)
	err := runChangelogShow(cmd, []string{"9.9.9"})
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArguments, ExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}
