package git

import (
	"context"
	"fmt"
	"os"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// PushOptions describes what to push where.
type PushOptions struct {
	// Remote is the remote name (e.g. "origin").
	Remote string
	// Branch is the local branch to push. Empty pushes no branch ref.
	Branch string
	// Tag is the tag name to push alongside the branch. Empty pushes no tag.
	Tag string
	// Token authenticates HTTPS remotes. SSH remotes use the SSH agent
	// and ignore it.
	Token string
}

// RemoteURL returns the first URL of the named remote.
func (r *Repository) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("remote '%s': %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote '%s' has no URL", name)
	}
	return urls[0], nil
}

// Push sends the branch and tag refs to the remote. The context bounds
// the network operation; callers set a deadline from push_timeout.
func (r *Repository) Push(ctx context.Context, opts PushOptions) error {
	var refSpecs []gitconfig.RefSpec
	if opts.Branch != "" {
		refSpecs = append(refSpecs, gitconfig.RefSpec(
			fmt.Sprintf("refs/heads/%s:refs/heads/%s", opts.Branch, opts.Branch)))
	}
	if opts.Tag != "" {
		refSpecs = append(refSpecs, gitconfig.RefSpec(
			fmt.Sprintf("refs/tags/%s:refs/tags/%s", opts.Tag, opts.Tag)))
	}
	if len(refSpecs) == 0 {
		return fmt.Errorf("nothing to push: no branch or tag given")
	}

	url, err := r.RemoteURL(opts.Remote)
	if err != nil {
		return err
	}

	auth, err := authForURL(url, opts.Token)
	if err != nil {
		return err
	}

	logDebug("[git] pushing %d refspecs to '%s' (%s)", len(refSpecs), opts.Remote, url)

	err = r.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: opts.Remote,
		RefSpecs:   refSpecs,
		Auth:       auth,
	})
	if err == gogit.NoErrAlreadyUpToDate {
		logDebug("[git] push: already up to date")
		return nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("push to '%s' timed out: %w", opts.Remote, ctxErr)
		}
		return fmt.Errorf("pushing to '%s': %w", opts.Remote, err)
	}
	return nil
}

// authForURL returns the authentication method for a remote URL.
// SSH URLs require a running SSH agent. HTTPS URLs use the token when
// one is provided and fall back to anonymous access otherwise.
func authForURL(url, token string) (transport.AuthMethod, error) {
	if isSSHURL(url) {
		if !isSSHAgentAvailable() {
			return nil, fmt.Errorf("remote uses SSH but no SSH agent is available (SSH_AUTH_SOCK unset)")
		}
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			return nil, fmt.Errorf("SSH agent auth: %w", err)
		}
		return auth, nil
	}

	if token != "" {
		// GitHub and GitLab accept the token as the basic-auth username.
		return &http.BasicAuth{Username: token, Password: ""}, nil
	}
	return nil, nil
}

// isSSHURL checks if a URL is an SSH URL.
// Detects git@ (SCP-style), ssh://, and git+ssh:// schemes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

// isSSHAgentAvailable reports whether SSH_AUTH_SOCK points at an agent.
func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
