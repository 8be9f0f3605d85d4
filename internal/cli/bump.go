package cli

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/relver/internal/bump"
	"github.com/ariel-frischer/relver/internal/config"
	"github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/git"
	"github.com/ariel-frischer/relver/internal/versionfile"
	"github.com/spf13/cobra"
)

var bumpDryRunFlag bool

var bumpCmd = &cobra.Command{
	Use:   "bump <rule|version>",
	Short: "Bump the version declared in the project's version file",
	Long: `Bump the semantic version declared in the project's version file.

The argument is either a bump rule (patch, minor, major, prepatch,
preminor, premajor, prerelease) or an explicit semantic version. Explicit
versions must be strictly greater than the current one.

The version file is located from the version_file config key, or
auto-discovered among common candidates (package.json, pyproject.toml,
Cargo.toml, setup.py, VERSION, version.txt). Quoting, spacing, and any
"v" prefix in the file are preserved. When no version file exists, the
current version falls back to the latest semver tag and only the tag
moves forward.

Examples:
  relver bump patch        # 1.2.3 -> 1.2.4
  relver bump preminor     # 1.2.3 -> 1.3.0-0
  relver bump prerelease   # 1.3.0-0 -> 1.3.0-1
  relver bump 2.0.0        # explicit version
  relver bump major --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBump(cmd, args[0])
	},
}

func init() {
	bumpCmd.GroupID = GroupRelease
	rootCmd.AddCommand(bumpCmd)

	bumpCmd.Flags().BoolVar(&bumpDryRunFlag, "dry-run", false, "Show the new version without writing it")
}

func runBump(cmd *cobra.Command, arg string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	path, current, err := resolveCurrentVersion(cfg)
	if err != nil {
		return NewExitErrorWrap(ExitMissingPrerequisites, err)
	}

	next, err := resolveTarget(current, arg)
	if err != nil {
		return NewExitErrorWrap(ExitInvalidArguments, err)
	}

	if path == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (from git tag; no version file to update)\n", current, next)
		fmt.Fprintf(cmd.OutOrStdout(), "Run 'relver release' to create the %s%s tag.\n", cfg.TagPrefix, next)
		return nil
	}

	if bumpDryRunFlag {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (dry run, %s unchanged)\n", current, next, path)
		return nil
	}

	if err := versionfile.Write(path, next.String()); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", current, next, path)
	return nil
}

// resolveCurrentVersion finds the current project version: from the
// version file when one exists, otherwise from the latest semver tag.
// An empty path means tag-derived, so there is no file to rewrite.
func resolveCurrentVersion(cfg *config.Configuration) (path, current string, err error) {
	path, fileErr := resolveVersionFile(cfg)
	if fileErr == nil {
		current, err = versionfile.Read(path)
		if err != nil {
			return "", "", errors.Wrap(err, errors.Prerequisite,
				"Ensure the version file contains a semantic version declaration")
		}
		return path, current, nil
	}

	repo, gitErr := git.Open("")
	if gitErr == nil {
		tag, tagErr := repo.LatestTag(cfg.TagPrefix)
		if tagErr == nil && tag != "" {
			return "", tag, nil
		}
	}

	return "", "", fileErr
}

// resolveTarget computes the next version from a bump rule or an explicit
// version argument. Explicit versions must advance the current version.
func resolveTarget(current, arg string) (bump.Version, error) {
	if rule, err := bump.ParseRule(arg); err == nil {
		next, err := bump.Next(current, rule)
		if err != nil {
			return bump.Version{}, errors.Wrap(err, errors.Argument)
		}
		return next, nil
	}

	// Not a rule name; treat as an explicit version.
	target, err := bump.Parse(arg)
	if err != nil {
		return bump.Version{}, errors.NewArgumentErrorWithUsage(
			fmt.Sprintf("%q is neither a bump rule nor a valid version", arg),
			"relver bump <patch|minor|major|prepatch|preminor|premajor|prerelease|version>")
	}
	parsed, err := bump.Parse(current)
	if err != nil {
		return bump.Version{}, fmt.Errorf("current version: %w", err)
	}
	if bump.Compare(target, parsed) <= 0 {
		return bump.Version{}, errors.NewArgumentError(
			fmt.Sprintf("version %s does not advance current version %s", target, parsed))
	}
	return target, nil
}

// resolveVersionFile returns the configured version file, or probes the
// well-known candidates when none is configured.
func resolveVersionFile(cfg *config.Configuration) (string, error) {
	if cfg.VersionFile != "" {
		if _, err := versionfile.Discover(cfg.VersionFile); err != nil {
			return "", errors.NewConfigError(
				fmt.Sprintf("configured version_file %s has no version declaration", cfg.VersionFile),
				"Check the version_file key in .relver.yml")
		}
		return cfg.VersionFile, nil
	}

	for _, candidate := range config.VersionFileCandidates {
		if _, err := versionfile.Discover(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.NewPrerequisiteError(
		fmt.Sprintf("no version file found (tried %s)", strings.Join(config.VersionFileCandidates, ", ")),
		"Set version_file in .relver.yml, or create a VERSION file")
}
