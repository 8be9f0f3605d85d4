// Package cli implements the relver command-line interface using cobra.
// Commands are registered in init() functions and organized into groups
// for help output.
package cli

import (
	"fmt"
	"os"

	"github.com/ariel-frischer/relver/internal/config"
	"github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/git"
	"github.com/spf13/cobra"
)

// Command group IDs for help organization
const (
	GroupRelease       = "release"
	GroupChangelog     = "changelog"
	GroupConfiguration = "configuration"
)

var (
	cfgFileFlag string
	repoFlag    string
	debugFlag   bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "relver",
	Short: "Version bumps, changelogs, and release tags for any repository",
	Long: `relver automates the release chores of a repository: bumping the
semantic version declared in the project's version file, promoting pending
changelog entries into a dated release section, rendering CHANGELOG.md,
and committing, tagging, and pushing the result.

The changelog source of truth is a YAML file (changelog.yml by default);
CHANGELOG.md is always generated from it. Configuration is read from
.relver.yml, overridable with RELVER_* environment variables.

Documentation: https://github.com/ariel-frischer/relver`,
	Example: `  relver bump patch             # 1.2.3 -> 1.2.4 in the version file
  relver bump preminor          # 1.2.3 -> 1.3.0-0
  relver changelog add fixed "Handle empty config files"
  relver changelog sync         # regenerate CHANGELOG.md
  relver release minor          # bump, promote changelog, commit, tag, push
  relver release patch --dry-run`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if repoFlag != "" {
			if err := os.Chdir(repoFlag); err != nil {
				return errors.NewArgumentError(
					fmt.Sprintf("cannot change to directory %s: %v", repoFlag, err))
			}
		}
		if debugFlag {
			git.SetDebugLogger(func(format string, args ...any) {
				fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
			})
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFileFlag, "config", "c", "", "Path to config file (default .relver.yml)")
	rootCmd.PersistentFlags().StringVarP(&repoFlag, "repo", "C", "", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRelease, Title: "Release Commands:"},
		&cobra.Group{ID: GroupChangelog, Title: "Changelog Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
	)
}

// Execute runs the root command. CLI errors are printed with category and
// remediation; the returned error carries the exit code for main.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	if exitErr := AsExitError(err); exitErr != nil {
		if exitErr.Err != nil {
			printCommandError(exitErr.Err)
		}
		return err
	}

	printCommandError(err)
	return err
}

// printCommandError formats CLI errors with remediation; plain errors get
// a bare "Error:" prefix.
func printCommandError(err error) {
	if cliErr := errors.AsCLIError(err); cliErr != nil {
		errors.FprintError(os.Stderr, cliErr)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// loadConfiguration loads the effective configuration, honoring --config.
func loadConfiguration() (*config.Configuration, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{ProjectConfigPath: cfgFileFlag})
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration,
			"Check .relver.yml for syntax errors or invalid values",
			"Run 'relver config show' to inspect the effective configuration")
	}
	return cfg, nil
}

// openRepository opens the git repository containing the working directory.
func openRepository() (*git.Repository, error) {
	repo, err := git.Open("")
	if err != nil {
		return nil, errors.NewPrerequisiteError(
			"not inside a git repository",
			"Run relver from within a git repository, or pass --repo <path>")
	}
	return repo, nil
}
