// Package config provides hierarchical configuration management for relver
// using koanf. Configuration is loaded with priority: environment variables
// (RELVER_*) > project config (.relver.yml) > user config
// (~/.config/relver/config.yml) > defaults. Legacy JSON project configs
// (.relver.json) are still read, with a migration warning.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration holds the relver settings for a repository.
type Configuration struct {
	// VersionFile is the file holding the project version declaration.
	// Empty means auto-discover among the common candidates.
	VersionFile string `koanf:"version_file"`

	// ChangelogFile is the YAML changelog source of truth.
	ChangelogFile string `koanf:"changelog_file" validate:"required"`

	// ChangelogOutput is the rendered markdown changelog path.
	ChangelogOutput string `koanf:"changelog_output" validate:"required"`

	// TagPrefix is prepended to the version when tagging (usually "v").
	TagPrefix string `koanf:"tag_prefix"`

	// Remote is the git remote releases are pushed to.
	Remote string `koanf:"remote" validate:"required"`

	// CommitName and CommitEmail identify the release commit author.
	// CommitEmail falls back to the CI_COMMIT_EMAIL environment variable
	// and then to the repository's own git config.
	CommitName  string `koanf:"commit_name"`
	CommitEmail string `koanf:"commit_email" validate:"omitempty,email"`

	// AllowedDirty lists paths that may carry uncommitted changes when a
	// release starts, in addition to the files relver writes itself.
	AllowedDirty []string `koanf:"allowed_dirty"`

	// PushTimeout bounds the push operation, in seconds. 0 disables the
	// deadline.
	PushTimeout int `koanf:"push_timeout" validate:"gte=0,lte=3600"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relver.yml).
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr).
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings.
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: environment variables > project config > user config > defaults.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := opts.WarningWriter
	if warningWriter == nil {
		warningWriter = os.Stderr
	}

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	if err := loadUserConfig(k); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvFallbacks(&cfg)

	if err := ValidateValues(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadUserConfig loads the user-level YAML config when it exists.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil {
		return nil // no home directory; defaults still apply
	}
	if !fileExists(path) {
		return nil
	}
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating user config: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading user config %s: %w", path, err)
	}
	return nil
}

// loadProjectConfig loads the project config, preferring YAML over the
// legacy JSON format. A legacy file alongside a YAML file is ignored with
// a warning.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	yamlPath := ProjectConfigPath()
	if customPath != "" {
		yamlPath = customPath
	}
	legacyPath := LegacyProjectConfigPath()

	switch {
	case fileExists(yamlPath):
		if err := ValidateYAMLSyntax(yamlPath); err != nil {
			return fmt.Errorf("validating project config: %w", err)
		}
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading project config %s: %w", yamlPath, err)
		}
		if fileExists(legacyPath) && !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		}
	case fileExists(legacyPath):
		if err := k.Load(file.Provider(legacyPath), json.Parser()); err != nil {
			return fmt.Errorf("loading legacy project config %s: %w", legacyPath, err)
		}
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: using deprecated JSON config at %s\n", legacyPath)
			fmt.Fprintf(warningWriter, "  Rename it to %s in YAML format.\n\n", ProjectConfigPath())
		}
	}
	return nil
}

// applyEnvFallbacks fills values that have dedicated environment variables
// outside the RELVER_ namespace. CI systems conventionally export
// CI_COMMIT_EMAIL for the service account's address.
func applyEnvFallbacks(cfg *Configuration) {
	if cfg.CommitEmail == "" {
		cfg.CommitEmail = os.Getenv("CI_COMMIT_EMAIL")
	}
}

// Token returns the push token from the environment. RELVER_TOKEN wins
// over GITHUB_TOKEN. Tokens are never read from config files.
func Token() string {
	if t := os.Getenv("RELVER_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GITHUB_TOKEN")
}

const envPrefix = "RELVER_"

// envTransform converts environment variable names to config keys.
// Example: RELVER_TAG_PREFIX -> tag_prefix
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
