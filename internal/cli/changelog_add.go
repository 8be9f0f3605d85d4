package cli

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/relver/internal/errors"
	"github.com/spf13/cobra"
)

var changelogAddCmd = &cobra.Command{
	Use:   "add <category> <text>",
	Short: "Add a pending change note to the unreleased section",
	Long: `Add a change note to the unreleased section of the changelog source.

Category is one of the Keep a Changelog categories: added, changed,
deprecated, removed, fixed, security. The source file is created on
first use.

Examples:
  relver changelog add added "Support custom tag prefixes"
  relver changelog add fixed "Handle empty config files"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogAdd(cmd, args[0], strings.Join(args[1:], " "))
	},
}

func init() {
	changelogCmd.AddCommand(changelogAddCmd)
}

func runChangelogAdd(cmd *cobra.Command, category, text string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	if strings.TrimSpace(text) == "" {
		return NewExitErrorWrap(ExitInvalidArguments,
			errors.NewArgumentError("change note text cannot be empty"))
	}

	log, err := loadOrCreateChangelog(cfg)
	if err != nil {
		return err
	}

	if err := log.AddEntry(strings.ToLower(category), text); err != nil {
		return NewExitErrorWrap(ExitInvalidArguments,
			errors.NewArgumentErrorWithUsage(
				err.Error(),
				"relver changelog add <added|changed|deprecated|removed|fixed|security> <text>"))
	}

	if err := log.Save(cfg.ChangelogFile); err != nil {
		return fmt.Errorf("saving %s: %w", cfg.ChangelogFile, err)
	}

	unreleased := log.Unreleased()
	count := 0
	if unreleased != nil {
		count = unreleased.Changes.Count()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s entry (%d pending change%s in %s)\n",
		category, count, plural(count), cfg.ChangelogFile)
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
