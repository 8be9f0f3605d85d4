// Package git wraps the go-git operations relver needs for a release:
// working tree status, semver tag discovery, release commits, annotated
// tags, and pushing the release refs to a remote.
package git

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/mod/semver"
)

// debugLogger is a function that logs debug messages when debug mode is
// enabled. By default it is a no-op. Set it via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Repository is an open git repository rooted at Root.
type Repository struct {
	repo *gogit.Repository
	root string
}

// Open opens the git repository containing path, traversing up the
// directory tree to find the repository root. An empty path means the
// current working directory.
func Open(path string) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	return &Repository{repo: repo, root: worktree.Filesystem.Root()}, nil
}

// Root returns the absolute path of the repository root.
func (r *Repository) Root() string {
	return r.root
}

// CurrentBranch returns the name of the checked-out branch.
// Returns empty string in detached HEAD state.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch: %s", branch)
	return branch, nil
}

// HeadMessage returns the commit message of HEAD. Used to detect when the
// working tree already sits on a commit relver produced.
func (r *Repository) HeadMessage() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("reading HEAD commit: %w", err)
	}
	return commit.Message, nil
}

// DirtyFiles returns the repo-relative paths with uncommitted changes,
// excluding untracked files and anything matched by the allowed list.
// Allowed entries match exact paths or whole path prefixes, so "docs"
// allows everything under docs/.
func (r *Repository) DirtyFiles(allowed []string) ([]string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("reading worktree status: %w", err)
	}

	var dirty []string
	for path, st := range status {
		if st.Worktree == gogit.Untracked {
			continue
		}
		if st.Worktree == gogit.Unmodified && st.Staging == gogit.Unmodified {
			continue
		}
		if pathAllowed(path, allowed) {
			logDebug("[git] DirtyFiles: %s dirty but allowed", path)
			continue
		}
		dirty = append(dirty, path)
	}

	sort.Strings(dirty)
	logDebug("[git] DirtyFiles: %d disallowed dirty paths", len(dirty))
	return dirty, nil
}

// pathAllowed reports whether path matches an allowed entry exactly or
// falls under an allowed directory prefix.
func pathAllowed(path string, allowed []string) bool {
	for _, a := range allowed {
		a = strings.TrimSuffix(filepath.ToSlash(a), "/")
		if a == "" {
			continue
		}
		if path == a || strings.HasPrefix(path, a+"/") {
			return true
		}
	}
	return false
}

// LatestTag returns the highest semver tag carrying the given prefix,
// with the prefix stripped. Returns empty string when no matching tag
// exists. Tags that are not valid semver after the prefix are ignored.
func (r *Repository) LatestTag(prefix string) (string, error) {
	tagIter, err := r.repo.Tags()
	if err != nil {
		return "", fmt.Errorf("listing tags: %w", err)
	}

	var best string
	err = tagIter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		version := strings.TrimPrefix(name, prefix)
		if !semver.IsValid("v" + version) {
			return nil
		}
		if best == "" || semver.Compare("v"+version, "v"+best) > 0 {
			best = version
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("iterating tags: %w", err)
	}

	logDebug("[git] LatestTag(%q): %q", prefix, best)
	return best, nil
}

// TagExists reports whether a tag reference with the given name exists.
func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err == nil {
		return true, nil
	}
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	return false, fmt.Errorf("checking tag %s: %w", name, err)
}

// Identity is the author identity used on release commits and tags.
type Identity struct {
	Name  string
	Email string
}

// resolveIdentity fills missing name or email from the repository config,
// mirroring what the git CLI would use.
func (r *Repository) resolveIdentity(id Identity) (Identity, error) {
	if id.Name != "" && id.Email != "" {
		return id, nil
	}

	cfg, err := r.repo.ConfigScoped(gitconfig.SystemScope)
	if err != nil {
		return id, fmt.Errorf("reading git config: %w", err)
	}
	if id.Name == "" {
		id.Name = cfg.User.Name
	}
	if id.Email == "" {
		id.Email = cfg.User.Email
	}
	if id.Name == "" || id.Email == "" {
		return id, fmt.Errorf("commit identity incomplete: set commit_name/commit_email or git user.name/user.email")
	}
	return id, nil
}

// Commit stages the given repo-relative paths and creates a commit with
// the given message and identity. Returns the new commit hash.
func (r *Repository) Commit(message string, id Identity, paths ...string) (string, error) {
	resolved, err := r.resolveIdentity(id)
	if err != nil {
		return "", err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	for _, path := range paths {
		if _, err := worktree.Add(path); err != nil {
			return "", fmt.Errorf("staging %s: %w", path, err)
		}
	}

	sig := &object.Signature{
		Name:  resolved.Name,
		Email: resolved.Email,
		When:  time.Now(),
	}
	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		return "", fmt.Errorf("creating commit: %w", err)
	}

	logDebug("[git] Commit: %s %q", hash.String()[:7], message)
	return hash.String(), nil
}

// CreateTag creates an annotated tag at HEAD.
func (r *Repository) CreateTag(name, message string, id Identity) error {
	resolved, err := r.resolveIdentity(id)
	if err != nil {
		return err
	}

	exists, err := r.TagExists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("tag '%s' already exists", name)
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD reference: %w", err)
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &gogit.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  resolved.Name,
			Email: resolved.Email,
			When:  time.Now(),
		},
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("creating tag '%s': %w", name, err)
	}

	logDebug("[git] CreateTag: %s at %s", name, head.Hash().String()[:7])
	return nil
}
