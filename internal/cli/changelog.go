package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/config"
	"github.com/ariel-frischer/relver/internal/errors"
	"github.com/spf13/cobra"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Manage the changelog source and rendered CHANGELOG.md",
	Long: `Manage the YAML changelog source of truth and its rendered markdown.

Pending change notes accumulate under an "unreleased" section in
changelog.yml. A release promotes them into a dated version section;
CHANGELOG.md is always generated from the YAML and never edited by hand.

Examples:
  relver changelog add fixed "Handle empty config files"
  relver changelog show
  relver changelog check
  relver changelog sync`,
}

func init() {
	changelogCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(changelogCmd)
}

// loadChangelog loads the configured changelog source.
func loadChangelog(cfg *config.Configuration) (*changelog.Changelog, error) {
	log, err := changelog.Load(cfg.ChangelogFile)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, NewExitErrorWrap(ExitMissingPrerequisites,
				errors.NewPrerequisiteError(
					fmt.Sprintf("changelog source %s does not exist", cfg.ChangelogFile),
					"Run 'relver changelog add <category> <text>' to create it"))
		}
		if changelog.IsValidationError(err) {
			return nil, errors.Wrap(err, errors.Configuration,
				fmt.Sprintf("Fix the structure of %s", cfg.ChangelogFile))
		}
		return nil, fmt.Errorf("loading %s: %w", cfg.ChangelogFile, err)
	}
	return log, nil
}

// loadOrCreateChangelog loads the changelog source, creating an empty one
// named after the working directory when the file does not exist yet.
func loadOrCreateChangelog(cfg *config.Configuration) (*changelog.Changelog, error) {
	log, err := changelog.Load(cfg.ChangelogFile)
	if err == nil {
		return log, nil
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", cfg.ChangelogFile, err)
	}

	wd, wdErr := os.Getwd()
	project := "project"
	if wdErr == nil {
		project = filepath.Base(wd)
	}
	return &changelog.Changelog{Project: project}, nil
}
