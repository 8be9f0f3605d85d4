// Package testutil provides test utilities and helpers for relver tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	// relverBinaryPath caches the built relver binary path.
	relverBinaryPath string
	relverBuildOnce  sync.Once
	relverBuildErr   error
)

// E2EEnv provides an isolated environment for E2E testing. It manages a
// temp working directory, a sanitized environment (no tokens, isolated
// HOME so user config cannot leak in), and an optional git repository
// fixture.
type E2EEnv struct {
	t        *testing.T
	tempDir  string
	extraEnv []string
}

// CommandResult captures the result of running a relver command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates a new isolated E2E test environment.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	env := &E2EEnv{
		t:       t,
		tempDir: t.TempDir(),
	}
	env.buildRelver()
	return env
}

// TempDir returns the working directory commands run in.
func (e *E2EEnv) TempDir() string {
	return e.tempDir
}

// Setenv adds an environment variable to subsequent Run calls.
func (e *E2EEnv) Setenv(key, value string) {
	e.extraEnv = append(e.extraEnv, key+"="+value)
}

// WriteFile writes a file relative to the temp working directory.
func (e *E2EEnv) WriteFile(name, content string) {
	e.t.Helper()
	path := filepath.Join(e.tempDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", name, err)
	}
}

// ReadFile reads a file relative to the temp working directory.
func (e *E2EEnv) ReadFile(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.tempDir, name))
	if err != nil {
		e.t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// InitGitRepo turns the temp directory into a git repository with all
// current files committed.
func (e *E2EEnv) InitGitRepo() {
	e.t.Helper()

	repo, err := gogit.PlainInit(e.tempDir, false)
	if err != nil {
		e.t.Fatalf("initializing git repo: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		e.t.Fatalf("getting worktree: %v", err)
	}
	if err := worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		e.t.Fatalf("staging files: %v", err)
	}

	sig := &object.Signature{Name: "e2e", Email: "e2e@example.com", When: time.Now()}
	if _, err := worktree.Commit("initial commit", &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		e.t.Fatalf("creating initial commit: %v", err)
	}
}

func (e *E2EEnv) buildRelver() {
	e.t.Helper()

	relverBuildOnce.Do(func() {
		relverBinaryPath, relverBuildErr = doBuildRelver()
	})

	if relverBuildErr != nil {
		e.t.Fatalf("building relver: %v", relverBuildErr)
	}
}

func doBuildRelver() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "relver-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "relver")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/relver")
	cmd.Dir = repoRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("building relver: %w\nOutput: %s", err, output)
	}

	return binaryPath, nil
}

// Run executes a relver command in the isolated environment.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(relverBinaryPath, args...)
	cmd.Dir = e.tempDir
	cmd.Env = e.buildIsolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}

	return result
}

// buildIsolatedEnv builds the command environment: HOME points into the
// temp dir so no user config is picked up, and tokens are never
// inherited from the host.
func (e *E2EEnv) buildIsolatedEnv() []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + e.tempDir,
		"NO_COLOR=1",
	}

	safeVars := []string{
		"TERM",
		"LANG",
		"LC_ALL",
		"TMPDIR",
	}
	for _, key := range safeVars {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}

	return append(env, e.extraEnv...)
}
