package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file,
// following the XDG Base Directory Specification:
// - Linux: ~/.config/relver/config.yml
// - macOS: ~/Library/Application Support/relver/config.yml
// - Windows: %APPDATA%\relver\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "relver", "config.yml"), nil
}

// ProjectConfigPath returns the project-level config file path,
// relative to the current directory.
func ProjectConfigPath() string {
	return ".relver.yml"
}

// LegacyProjectConfigPath returns the deprecated JSON project config path.
func LegacyProjectConfigPath() string {
	return ".relver.json"
}
