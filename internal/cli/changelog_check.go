package cli

import (
	"fmt"
	"os"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/spf13/cobra"
)

var changelogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the rendered changelog matches the YAML source",
	Long: `Verify that the rendered markdown changelog is in sync with the
YAML source. Returns exit code 0 when in sync, 1 when the markdown is
stale or missing.

Intended for CI: fails the build when someone edits CHANGELOG.md by hand
or forgets to run 'relver changelog sync'.

Example:
  relver changelog check`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogCheck(cmd)
	},
}

func init() {
	changelogCmd.AddCommand(changelogCheckCmd)
}

func runChangelogCheck(cmd *cobra.Command) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	log, err := loadChangelog(cfg)
	if err != nil {
		return err
	}

	expected, err := changelog.RenderMarkdownString(log)
	if err != nil {
		return fmt.Errorf("rendering changelog: %w", err)
	}

	actual, err := os.ReadFile(cfg.ChangelogOutput)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s does not exist.\n", cfg.ChangelogOutput)
			fmt.Fprintf(cmd.ErrOrStderr(), "Run 'relver changelog sync' to generate it.\n")
			return NewExitError(ExitFailure)
		}
		return fmt.Errorf("reading %s: %w", cfg.ChangelogOutput, err)
	}

	if string(actual) != expected {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s is out of sync with %s.\n", cfg.ChangelogOutput, cfg.ChangelogFile)
		fmt.Fprintf(cmd.ErrOrStderr(), "Run 'relver changelog sync' to regenerate it.\n")
		return NewExitError(ExitFailure)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is in sync with %s.\n", cfg.ChangelogOutput, cfg.ChangelogFile)
	return nil
}
