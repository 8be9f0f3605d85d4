package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ariel-frischer/relver/internal/bump"
	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/config"
	"github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/git"
	"github.com/ariel-frischer/relver/internal/progress"
	"github.com/ariel-frischer/relver/internal/versionfile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// releaseCommitPrefix marks commits produced by relver. A CI job that
// triggers on push uses this to recognize its own commit and stop,
// instead of releasing again in a loop.
const releaseCommitPrefix = "chore(release): "

var (
	releaseDryRunFlag bool
	releaseNoPushFlag bool
	releaseYesFlag    bool
)

var releaseCmd = &cobra.Command{
	Use:   "release <rule|version>",
	Short: "Bump, promote the changelog, commit, tag, and push",
	Long: `Run a full release: bump the version file, promote pending changelog
entries into a dated release section, regenerate the markdown changelog,
commit the three files, create an annotated tag, and push the branch and
tag to the configured remote.

The argument is a bump rule (patch, minor, major, prepatch, preminor,
premajor, prerelease) or an explicit semantic version.

Before anything is written, preflight checks verify that the working
tree is clean (outside allowed_dirty paths), the changelog has pending
entries, HEAD is not already a release commit, and the target tag does
not exist.

HTTPS remotes authenticate with RELVER_TOKEN or GITHUB_TOKEN; SSH
remotes use the SSH agent.

Examples:
  relver release patch
  relver release minor --dry-run     # show the plan, write nothing
  relver release major --no-push     # commit and tag locally only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelease(cmd, args[0])
	},
}

func init() {
	releaseCmd.GroupID = GroupRelease
	rootCmd.AddCommand(releaseCmd)

	releaseCmd.Flags().BoolVar(&releaseDryRunFlag, "dry-run", false, "Show what would happen without writing anything")
	releaseCmd.Flags().BoolVar(&releaseNoPushFlag, "no-push", false, "Commit and tag locally, skip the push")
	releaseCmd.Flags().BoolVarP(&releaseYesFlag, "yes", "y", false, "Skip the confirmation prompt")
}

// releasePlan is everything decided before the first write. An empty
// versionPath means the current version came from the latest tag and no
// version file participates in the release.
type releasePlan struct {
	cfg         *config.Configuration
	repo        *git.Repository
	branch      string
	versionPath string
	current     string
	next        bump.Version
	tagName     string
	log         *changelog.Changelog
}

func runRelease(cmd *cobra.Command, arg string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	repo, err := openRepository()
	if err != nil {
		return NewExitErrorWrap(ExitMissingPrerequisites, err)
	}

	plan, err := buildReleasePlan(cmd.Context(), cfg, repo, arg)
	if err != nil {
		return err
	}

	printPlan(cmd, plan)
	if releaseDryRunFlag {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run: nothing written.")
		return nil
	}

	if !releaseYesFlag && !confirm(cmd, fmt.Sprintf("Release %s?", plan.next)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	return executeRelease(cmd, plan)
}

// buildReleasePlan resolves the target version and runs the preflight
// checks. Independent checks run concurrently; the first failure wins.
func buildReleasePlan(ctx context.Context, cfg *config.Configuration, repo *git.Repository, arg string) (*releasePlan, error) {
	versionPath, current, err := resolveCurrentVersion(cfg)
	if err != nil {
		return nil, NewExitErrorWrap(ExitMissingPrerequisites, err)
	}

	next, err := resolveTarget(current, arg)
	if err != nil {
		return nil, NewExitErrorWrap(ExitInvalidArguments, err)
	}

	plan := &releasePlan{
		cfg:         cfg,
		repo:        repo,
		versionPath: versionPath,
		current:     current,
		next:        next,
		tagName:     cfg.TagPrefix + next.String(),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return checkBranch(plan) })
	g.Go(func() error { return checkWorktree(plan) })
	g.Go(func() error { return checkChangelog(plan) })
	g.Go(func() error { return checkTag(plan) })
	g.Go(func() error { return checkPushable(plan) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plan, nil
}

func checkBranch(plan *releasePlan) error {
	branch, err := plan.repo.CurrentBranch()
	if err != nil {
		return err
	}
	if branch == "" {
		return NewExitErrorWrap(ExitMissingPrerequisites,
			errors.NewPrerequisiteError("HEAD is detached",
				"Check out a branch before releasing"))
	}
	plan.branch = branch

	head, err := plan.repo.HeadMessage()
	if err != nil {
		return err
	}
	if strings.HasPrefix(head, releaseCommitPrefix) {
		return NewExitErrorWrap(ExitMissingPrerequisites,
			errors.NewPrerequisiteError(
				"HEAD is already a release commit",
				"A CI job re-running on its own release push should stop here",
				"Commit something releasable first, or release from another ref"))
	}
	return nil
}

func checkWorktree(plan *releasePlan) error {
	allowed := append([]string{
		plan.cfg.ChangelogFile,
		plan.cfg.ChangelogOutput,
	}, plan.cfg.AllowedDirty...)
	if plan.versionPath != "" {
		allowed = append(allowed, plan.versionPath)
	}

	dirty, err := plan.repo.DirtyFiles(allowed)
	if err != nil {
		return err
	}
	if len(dirty) > 0 {
		return NewExitErrorWrap(ExitMissingPrerequisites,
			errors.NewPrerequisiteError(
				fmt.Sprintf("working tree has uncommitted changes: %s", strings.Join(dirty, ", ")),
				"Commit or stash these changes, or list them under allowed_dirty"))
	}
	return nil
}

func checkChangelog(plan *releasePlan) error {
	log, err := loadChangelog(plan.cfg)
	if err != nil {
		return err
	}

	unreleased := log.Unreleased()
	if unreleased == nil || unreleased.Changes.IsEmpty() {
		return NewExitErrorWrap(ExitMissingPrerequisites,
			errors.NewPrerequisiteError(
				fmt.Sprintf("no pending changes in %s", plan.cfg.ChangelogFile),
				"Add at least one entry with 'relver changelog add <category> <text>'"))
	}

	plan.log = log
	return nil
}

func checkTag(plan *releasePlan) error {
	exists, err := plan.repo.TagExists(plan.tagName)
	if err != nil {
		return err
	}
	if exists {
		return NewExitErrorWrap(ExitMissingPrerequisites,
			errors.NewPrerequisiteError(
				fmt.Sprintf("tag %s already exists", plan.tagName),
				"Pick a different bump rule or delete the stale tag"))
	}
	return nil
}

// checkPushable verifies auth prerequisites before any file is touched,
// so a missing token fails fast instead of after the commit.
func checkPushable(plan *releasePlan) error {
	if releaseNoPushFlag || releaseDryRunFlag {
		return nil
	}

	url, err := plan.repo.RemoteURL(plan.cfg.Remote)
	if err != nil {
		return NewExitErrorWrap(ExitMissingPrerequisites,
			errors.Wrap(err, errors.Prerequisite,
				fmt.Sprintf("Configure the '%s' remote, or change the remote config key", plan.cfg.Remote)))
	}

	if !strings.HasPrefix(url, "git@") && !strings.HasPrefix(url, "ssh://") &&
		!strings.HasPrefix(url, "git+ssh://") && config.Token() == "" {
		return NewExitErrorWrap(ExitMissingPrerequisites,
			errors.NewPrerequisiteError(
				"no push token set for HTTPS remote",
				"Export RELVER_TOKEN or GITHUB_TOKEN",
				"Or use --no-push and push manually"))
	}
	return nil
}

func printPlan(cmd *cobra.Command, plan *releasePlan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Release plan:\n")
	source := plan.versionPath
	if source == "" {
		source = "latest tag"
	}
	fmt.Fprintf(out, "  version:   %s -> %s (%s)\n", plan.current, plan.next, source)
	fmt.Fprintf(out, "  changelog: promote %d pending entr%s\n",
		plan.log.Unreleased().Changes.Count(), pluralY(plan.log.Unreleased().Changes.Count()))
	fmt.Fprintf(out, "  tag:       %s\n", plan.tagName)
	if releaseNoPushFlag {
		fmt.Fprintf(out, "  push:      skipped (--no-push)\n")
	} else {
		fmt.Fprintf(out, "  push:      %s %s + %s\n", plan.cfg.Remote, plan.branch, plan.tagName)
	}
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// executeRelease performs the writes in order: version file, changelog
// promote + render, commit, tag, push.
func executeRelease(cmd *cobra.Command, plan *releasePlan) error {
	display := progress.NewDisplay()
	defer display.Stop()

	if plan.versionPath != "" {
		if err := versionfile.Write(plan.versionPath, plan.next.String()); err != nil {
			return fmt.Errorf("writing version file: %w", err)
		}
		display.Complete(fmt.Sprintf("Bumped %s to %s", plan.versionPath, plan.next))
	}

	if err := plan.log.Promote(plan.next.String(), time.Now()); err != nil {
		return fmt.Errorf("promoting changelog: %w", err)
	}
	if err := plan.log.Save(plan.cfg.ChangelogFile); err != nil {
		return fmt.Errorf("saving %s: %w", plan.cfg.ChangelogFile, err)
	}
	if err := syncChangelogOutput(plan.log, plan.cfg); err != nil {
		return err
	}
	display.Complete(fmt.Sprintf("Promoted changelog for %s", plan.next))

	identity := git.Identity{Name: plan.cfg.CommitName, Email: plan.cfg.CommitEmail}
	message := releaseCommitPrefix + plan.next.String()
	commitPaths := []string{plan.cfg.ChangelogFile, plan.cfg.ChangelogOutput}
	if plan.versionPath != "" {
		commitPaths = append(commitPaths, plan.versionPath)
	}
	hash, err := plan.repo.Commit(message, identity, commitPaths...)
	if err != nil {
		return fmt.Errorf("creating release commit: %w", err)
	}
	display.Complete(fmt.Sprintf("Committed %s (%s)", message, hash[:7]))

	tagMessage := releaseTagMessage(plan)
	if err := plan.repo.CreateTag(plan.tagName, tagMessage, identity); err != nil {
		return fmt.Errorf("creating tag: %w", err)
	}
	display.Complete(fmt.Sprintf("Tagged %s", plan.tagName))

	if releaseNoPushFlag {
		display.Info(fmt.Sprintf("Skipped push. Run: git push %s %s %s",
			plan.cfg.Remote, plan.branch, plan.tagName))
		return nil
	}

	return pushRelease(cmd.Context(), display, plan)
}

// releaseTagMessage builds the annotated tag message from the promoted
// changelog section.
func releaseTagMessage(plan *releasePlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Release %s\n", plan.next)

	v, err := plan.log.GetVersion(plan.next.String())
	if err != nil {
		return sb.String()
	}
	sb.WriteString("\n")
	for _, entry := range v.Entries() {
		fmt.Fprintf(&sb, "- %s: %s\n", entry.Category, entry.Text)
	}
	return sb.String()
}

func pushRelease(ctx context.Context, display *progress.Display, plan *releasePlan) error {
	if plan.cfg.PushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(plan.cfg.PushTimeout)*time.Second)
		defer cancel()
	}

	display.Start(fmt.Sprintf("Pushing %s and %s to %s", plan.branch, plan.tagName, plan.cfg.Remote))

	err := plan.repo.Push(ctx, git.PushOptions{
		Remote: plan.cfg.Remote,
		Branch: plan.branch,
		Tag:    plan.tagName,
		Token:  config.Token(),
	})
	if err != nil {
		display.Fail("Push failed")
		if ctx.Err() != nil {
			return NewExitErrorWrap(ExitTimeout,
				errors.Wrap(err, errors.Runtime,
					"Increase push_timeout in .relver.yml",
					fmt.Sprintf("The release commit and tag exist locally; retry with: git push %s %s %s",
						plan.cfg.Remote, plan.branch, plan.tagName)))
		}
		return errors.Wrap(err, errors.Runtime,
			fmt.Sprintf("The release commit and tag exist locally; retry with: git push %s %s %s",
				plan.cfg.Remote, plan.branch, plan.tagName))
	}

	display.Complete(fmt.Sprintf("Pushed %s and %s to %s", plan.branch, plan.tagName, plan.cfg.Remote))
	return nil
}

// confirm prompts on stdin for a y/N answer.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
