package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{
		ProjectConfigPath: filepath.Join(t.TempDir(), "missing.yml"),
		SkipWarnings:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.VersionFile)
	assert.Equal(t, "changelog.yml", cfg.ChangelogFile)
	assert.Equal(t, "CHANGELOG.md", cfg.ChangelogOutput)
	assert.Equal(t, "v", cfg.TagPrefix)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, 120, cfg.PushTimeout)
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, ".relver.yml", `
version_file: pyproject.toml
tag_prefix: ""
remote: upstream
push_timeout: 30
`)

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, SkipWarnings: true})
	require.NoError(t, err)

	assert.Equal(t, "pyproject.toml", cfg.VersionFile)
	assert.Equal(t, "", cfg.TagPrefix)
	assert.Equal(t, "upstream", cfg.Remote)
	assert.Equal(t, 30, cfg.PushTimeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, "CHANGELOG.md", cfg.ChangelogOutput)
}

func TestLoad_EnvironmentOverridesProject(t *testing.T) {
	path := writeConfig(t, ".relver.yml", "remote: upstream\n")
	t.Setenv("RELVER_REMOTE", "fork")
	t.Setenv("RELVER_COMMIT_EMAIL", "bot@example.com")

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, SkipWarnings: true})
	require.NoError(t, err)

	assert.Equal(t, "fork", cfg.Remote)
	assert.Equal(t, "bot@example.com", cfg.CommitEmail)
}

func TestLoad_CICommitEmailFallback(t *testing.T) {
	t.Setenv("CI_COMMIT_EMAIL", "ci@example.com")

	cfg, err := LoadWithOptions(LoadOptions{
		ProjectConfigPath: filepath.Join(t.TempDir(), "missing.yml"),
		SkipWarnings:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ci@example.com", cfg.CommitEmail)
}

func TestLoad_ExplicitEmailBeatsCIFallback(t *testing.T) {
	path := writeConfig(t, ".relver.yml", "commit_email: team@example.com\n")
	t.Setenv("CI_COMMIT_EMAIL", "ci@example.com")

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, SkipWarnings: true})
	require.NoError(t, err)
	assert.Equal(t, "team@example.com", cfg.CommitEmail)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]struct {
		yaml    string
		wantMsg string
	}{
		"bad email": {
			yaml:    "commit_email: not-an-email\n",
			wantMsg: "commit_email",
		},
		"negative timeout": {
			yaml:    "push_timeout: -1\n",
			wantMsg: "push_timeout",
		},
		"empty remote": {
			yaml:    "remote: \"\"\n",
			wantMsg: "remote",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, ".relver.yml", tt.yaml)

			_, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, SkipWarnings: true})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, ".relver.yml", "remote: [unclosed\n")

	_, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, SkipWarnings: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating project config")
}

func TestLoad_LegacyJSONWarns(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".relver.json", []byte(`{"remote": "upstream"}`), 0644))

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{WarningWriter: &warnings})
	require.NoError(t, err)

	assert.Equal(t, "upstream", cfg.Remote)
	assert.Contains(t, warnings.String(), "deprecated JSON config")
}

func TestToken(t *testing.T) {
	t.Setenv("RELVER_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "gh-token")
	assert.Equal(t, "gh-token", Token())

	t.Setenv("RELVER_TOKEN", "relver-token")
	assert.Equal(t, "relver-token", Token())
}

func TestValidateYAMLSyntax(t *testing.T) {
	assert.NoError(t, ValidateYAMLSyntax(filepath.Join(t.TempDir(), "missing.yml")))

	empty := writeConfig(t, "empty.yml", "   \n")
	assert.NoError(t, ValidateYAMLSyntax(empty))

	bad := writeConfig(t, "bad.yml", "key: [unclosed\n")
	assert.Error(t, ValidateYAMLSyntax(bad))
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "changelog_output", toSnakeCase("ChangelogOutput"))
	assert.Equal(t, "remote", toSnakeCase("Remote"))
}
