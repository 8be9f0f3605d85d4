package cli

import (
	"fmt"
	"os"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/config"
	"github.com/spf13/cobra"
)

var changelogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate the markdown changelog from the YAML source",
	Long: `Regenerate the markdown changelog from the YAML source.

The output follows the Keep a Changelog format, with comparison links
when the source declares a repository URL.

Example:
  relver changelog sync`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogSync(cmd)
	},
}

func init() {
	changelogCmd.AddCommand(changelogSyncCmd)
}

func runChangelogSync(cmd *cobra.Command) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	log, err := loadChangelog(cfg)
	if err != nil {
		return err
	}

	if err := syncChangelogOutput(log, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d versions)\n", cfg.ChangelogOutput, len(log.Versions))
	return nil
}

// syncChangelogOutput renders the changelog to the configured markdown
// path. Shared by sync, watch, and release.
func syncChangelogOutput(log *changelog.Changelog, cfg *config.Configuration) error {
	rendered, err := changelog.RenderMarkdownString(log)
	if err != nil {
		return fmt.Errorf("rendering changelog: %w", err)
	}
	if err := os.WriteFile(cfg.ChangelogOutput, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.ChangelogOutput, err)
	}
	return nil
}
