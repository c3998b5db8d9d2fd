// Package gitcheck provides the small set of git exec-based pre-flight
// checks `setup` and `hooks install` need before C2's go-git plumbing ever
// opens a repository: is this a repo at all, and where does it root.
package gitcheck

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/basinwood/gitjournal/internal/output"
)

// Run executes a git command with the background context, capturing and
// trimming stdout. Returns an *output.ExitError on failure.
func Run(args ...string) (string, error) {
	return RunContext(context.Background(), args...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", output.NewSystemError("git not found: ensure git is installed and in PATH")
		}
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", output.NewSystemErrorWithCause("git command failed: "+errMsg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo reports whether the current directory is inside a git repository.
func IsRepo() bool {
	_, err := Run("rev-parse", "--git-dir")
	return err == nil
}

// RepoRoot returns the root directory of the current git repository.
func RepoRoot() (string, error) {
	root, err := Run("rev-parse", "--show-toplevel")
	if err != nil {
		return "", output.NewSystemErrorWithCause("not in a git repository", err)
	}
	return root, nil
}

// HooksDir returns the repository's hooks directory, respecting
// core.hooksPath when configured.
func HooksDir() (string, error) {
	if custom, err := Run("config", "--get", "core.hooksPath"); err == nil && custom != "" {
		return custom, nil
	}
	gitDir, err := Run("rev-parse", "--git-dir")
	if err != nil {
		return "", output.NewSystemErrorWithCause("not in a git repository", err)
	}
	return gitDir + "/hooks", nil
}
