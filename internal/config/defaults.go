package config

// Defaults returns the default configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		// version_file: empty means auto-discover among VersionFileCandidates.
		"version_file": "",
		// changelog_file: the YAML source of truth for change notes.
		"changelog_file": "changelog.yml",
		// changelog_output: the rendered Keep a Changelog markdown document.
		"changelog_output": "CHANGELOG.md",
		// tag_prefix: release tags are <prefix><version>, e.g. v1.2.3.
		"tag_prefix": "v",
		// remote: where release commits and tags are pushed.
		"remote": "origin",
		// commit_name: author name on release commits.
		"commit_name": "relver",
		// commit_email: empty falls back to CI_COMMIT_EMAIL, then to the
		// repository's git config.
		"commit_email": "",
		// allowed_dirty: extra paths that may be uncommitted at release time.
		"allowed_dirty": []string{},
		// push_timeout: seconds before a push is abandoned (0 = no deadline).
		"push_timeout": 120,
	}
}

// VersionFileCandidates lists the files probed, in order, when
// version_file is not configured.
var VersionFileCandidates = []string{
	"package.json",
	"pyproject.toml",
	"Cargo.toml",
	"setup.py",
	"VERSION",
	"version.txt",
}

// ConfigTemplate returns a commented starter config written by
// `relver config init`.
func ConfigTemplate() string {
	return `# relver configuration
# Values here are overridden by RELVER_* environment variables.

# File holding the project version declaration.
# Leave empty to auto-discover (package.json, pyproject.toml, Cargo.toml,
# setup.py, VERSION, version.txt).
version_file: ""

# Changelog source of truth and rendered output.
changelog_file: changelog.yml
changelog_output: CHANGELOG.md

# Release tags are <tag_prefix><version>.
tag_prefix: v

# Git remote that receives the release commit and tag.
remote: origin

# Author identity for release commits. commit_email falls back to the
# CI_COMMIT_EMAIL environment variable, then to the repository git config.
commit_name: relver
commit_email: ""

# Paths that may carry uncommitted changes when a release starts.
allowed_dirty: []

# Seconds before a push is abandoned (0 = no deadline).
push_timeout: 120
`
}
