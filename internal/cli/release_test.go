package cli

import (
	"os"
	"testing"
	"time"

	"github.com/ariel-frischer/relver/internal/git"
	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReleaseIdentity = git.Identity{Name: "relver-test", Email: "relver@example.com"}

// initReleaseRepo builds a repository ready for a release: a VERSION file
// at 1.2.3 and a changelog with one pending entry, all committed.
func initReleaseRepo(t *testing.T) *git.Repository {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	raw, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile("VERSION", []byte("1.2.3\n"), 0644))
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML), 0644))

	worktree, err := raw.Worktree()
	require.NoError(t, err)
	for _, f := range []string{"VERSION", "changelog.yml"} {
		_, err = worktree.Add(f)
		require.NoError(t, err)
	}
	sig := &object.Signature{Name: testReleaseIdentity.Name, Email: testReleaseIdentity.Email, When: time.Now()}
	_, err = worktree.Commit("add release fixtures", &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	repo, err := git.Open(dir)
	require.NoError(t, err)
	return repo
}

func releaseTestPlan(repo *git.Repository) *releasePlan {
	cfg := testConfig()
	return &releasePlan{
		cfg:         cfg,
		repo:        repo,
		versionPath: "VERSION",
		current:     "1.2.3",
		tagName:     "v1.2.4",
	}
}

func TestResolveCurrentVersion_TagFallback(t *testing.T) {
	repo := initReleaseRepo(t)
	require.NoError(t, os.Remove("VERSION"))
	require.NoError(t, repo.CreateTag("v1.4.0", "release v1.4.0", testReleaseIdentity))

	path, current, err := resolveCurrentVersion(testConfig())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "1.4.0", current)
}

func TestBuildReleasePlan(t *testing.T) {
	repo := initReleaseRepo(t)

	releaseNoPushFlag = true
	t.Cleanup(func() { releaseNoPushFlag = false })

	plan, err := buildReleasePlan(t.Context(), testConfig(), repo, "patch")
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", plan.current)
	assert.Equal(t, "1.2.4", plan.next.String())
	assert.Equal(t, "v1.2.4", plan.tagName)
	assert.Equal(t, "master", plan.branch)
	require.NotNil(t, plan.log)
	assert.Equal(t, 1, plan.log.Unreleased().Changes.Count())
}

func TestCheckBranch_ReleaseCommitGuard(t *testing.T) {
	repo := initReleaseRepo(t)

	require.NoError(t, os.WriteFile("VERSION", []byte("1.2.4\n"), 0644))
	_, err := repo.Commit(releaseCommitPrefix+"1.2.4", testReleaseIdentity, "VERSION")
	require.NoError(t, err)

	err = checkBranch(releaseTestPlan(repo))
	require.Error(t, err)
	assert.Equal(t, ExitMissingPrerequisites, ExitCode(err))
	assert.Contains(t, err.Error(), "already a release commit")
}

func TestCheckWorktree_DirtyFile(t *testing.T) {
	repo := initReleaseRepo(t)
	require.NoError(t, os.WriteFile("VERSION", []byte("9.9.9\n"), 0644))

	plan := releaseTestPlan(repo)

	// The version file itself is always allowed to be dirty.
	require.NoError(t, checkWorktree(plan))

	// A dirty file outside the allowed set blocks the release.
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML+"# edited\n"), 0644))
	plan.cfg.ChangelogFile = "other.yml"
	err := checkWorktree(plan)
	require.Error(t, err)
	assert.Equal(t, ExitMissingPrerequisites, ExitCode(err))
	assert.Contains(t, err.Error(), "uncommitted changes")
}

func TestCheckWorktree_AllowedDirty(t *testing.T) {
	repo := initReleaseRepo(t)
	require.NoError(t, os.WriteFile("changelog.yml", []byte(testChangelogYAML+"# edited\n"), 0644))

	plan := releaseTestPlan(repo)
	plan.cfg.ChangelogFile = "other.yml"
	plan.cfg.AllowedDirty = []string{"changelog.yml"}

	require.NoError(t, checkWorktree(plan))
}

func TestCheckChangelog_NoPendingChanges(t *testing.T) {
	repo := initReleaseRepo(t)
	require.NoError(t, os.WriteFile("changelog.yml", []byte(`project: widget
versions:
  - version: 1.0.0
    date: 2026-01-15
    changes:
      added:
        - Initial release
`), 0644))

	err := checkChangelog(releaseTestPlan(repo))
	require.Error(t, err)
	assert.Equal(t, ExitMissingPrerequisites, ExitCode(err))
	assert.Contains(t, err.Error(), "no pending changes")
}

func TestCheckTag_AlreadyExists(t *testing.T) {
	repo := initReleaseRepo(t)
	require.NoError(t, repo.CreateTag("v1.2.4", "release v1.2.4", testReleaseIdentity))

	err := checkTag(releaseTestPlan(repo))
	require.Error(t, err)
	assert.Equal(t, ExitMissingPrerequisites, ExitCode(err))
	assert.Contains(t, err.Error(), "already exists")
}

func TestCheckPushable_MissingToken(t *testing.T) {
	repo := initReleaseRepo(t)
	t.Setenv("RELVER_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	raw, err := gogit.PlainOpen(repo.Root())
	require.NoError(t, err)
	_, err = raw.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/acme/widget.git"},
	})
	require.NoError(t, err)

	err = checkPushable(releaseTestPlan(repo))
	require.Error(t, err)
	assert.Equal(t, ExitMissingPrerequisites, ExitCode(err))
	assert.Contains(t, err.Error(), "no push token")
}

func TestCheckPushable_MissingRemote(t *testing.T) {
	repo := initReleaseRepo(t)

	err := checkPushable(releaseTestPlan(repo))
	require.Error(t, err)
	assert.Equal(t, ExitMissingPrerequisites, ExitCode(err))
}

func TestExecuteRelease_NoPush(t *testing.T) {
	repo := initReleaseRepo(t)

	releaseNoPushFlag = true
	t.Cleanup(func() { releaseNoPushFlag = false })

	plan, err := buildReleasePlan(t.Context(), testConfig(), repo, "patch")
	require.NoError(t, err)

	cmd, _ := newTestCommand(t)
	require.NoError(t, executeRelease(cmd, plan))

	// Version file bumped.
	data, err := os.ReadFile("VERSION")
	require.NoError(t, err)
	assert.Equal(t, "1.2.4\n", string(data))

	// Changelog promoted and rendered.
	yml, err := os.ReadFile("changelog.yml")
	require.NoError(t, err)
	assert.NotContains(t, string(yml), "unreleased")
	md, err := os.ReadFile("CHANGELOG.md")
	require.NoError(t, err)
	assert.Contains(t, string(md), "[1.2.4]")

	// Release commit at HEAD, tree clean, tag created.
	msg, err := repo.HeadMessage()
	require.NoError(t, err)
	assert.Equal(t, releaseCommitPrefix+"1.2.4", msg)

	dirty, err := repo.DirtyFiles(nil)
	require.NoError(t, err)
	assert.Empty(t, dirty)

	exists, err := repo.TagExists("v1.2.4")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReleaseTagMessage(t *testing.T) {
	repo := initReleaseRepo(t)

	releaseNoPushFlag = true
	t.Cleanup(func() { releaseNoPushFlag = false })

	plan, err := buildReleasePlan(t.Context(), testConfig(), repo, "patch")
	require.NoError(t, err)
	require.NoError(t, plan.log.Promote("1.2.4", time.Now()))

	msg := releaseTagMessage(plan)
	assert.Contains(t, msg, "Release 1.2.4")
	assert.Contains(t, msg, "fixed: Handle empty config files")
}
