package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/spf13/cobra"
)

var (
	changelogLastFlag  int
	changelogPlainFlag bool
)

var changelogShowCmd = &cobra.Command{
	Use:   "show [version]",
	Short: "Show changelog entries in the terminal",
	Long: `Show changelog entries from the YAML source.

By default, shows the 5 most recent entries. Use a version argument to
see all entries for a specific version, or use --last to control entry
count.

Examples:
  relver changelog show              # Show 5 most recent entries
  relver changelog show v0.6.0       # Show all entries for version 0.6.0
  relver changelog show 0.6.0        # Same (v prefix optional)
  relver changelog show unreleased   # Show pending changes
  relver changelog show --last 10    # Show 10 most recent entries
  relver changelog show --plain      # Plain output (no colors/icons)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogShow(cmd, args)
	},
}

func init() {
	changelogCmd.AddCommand(changelogShowCmd)

	changelogShowCmd.Flags().IntVar(&changelogLastFlag, "last", 5, "Number of entries to show")
	changelogShowCmd.Flags().BoolVar(&changelogPlainFlag, "plain", false, "Plain text output (no colors/icons)")
}

func runChangelogShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	log, err := loadChangelog(cfg)
	if err != nil {
		return err
	}

	opts := changelog.FormatOptions{
		Plain: changelogPlainFlag,
	}

	if len(args) == 1 {
		return showVersion(log, args[0], cmd, opts)
	}

	return showLastEntries(log, changelogLastFlag, cmd, opts)
}

func showVersion(log *changelog.Changelog, version string, cmd *cobra.Command, opts changelog.FormatOptions) error {
	v, err := log.GetVersion(version)
	if err != nil {
		var notFound *changelog.VersionNotFoundError
		if stderrors.As(err, &notFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Version %q not found.\n\n", version)
			fmt.Fprintf(cmd.ErrOrStderr(), "Available versions:\n")
			for _, ver := range log.ListVersions() {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", ver)
			}
			return NewExitError(ExitInvalidArguments)
		}
		return fmt.Errorf("getting version: %w", err)
	}

	return changelog.FormatVersion(v, cmd.OutOrStdout(), opts)
}

func showLastEntries(log *changelog.Changelog, n int, cmd *cobra.Command, opts changelog.FormatOptions) error {
	entries := log.LastN(n)
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No changelog entries found.")
		return nil
	}

	if err := changelog.FormatEntries(entries, cmd.OutOrStdout(), opts); err != nil {
		return fmt.Errorf("formatting entries: %w", err)
	}

	total := log.EntryCount()
	if total > len(entries) {
		fmt.Fprintf(cmd.OutOrStdout(), "\n(%d of %d entries shown. Use --last %d to see all)\n",
			len(entries), total, total)
	}

	return nil
}
