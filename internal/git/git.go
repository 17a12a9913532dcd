package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/sha1n/coveralls-go/internal/domain"
)

// DetachedHead is what git reports as the abbreviated ref of a detached HEAD.
const DetachedHead = "HEAD"

const logFormat = "--pretty=format:%H%n%aN%n%ae%n%cN%n%ce%n%B"

// CommandExecutor abstracts command execution for testing.
type CommandExecutor interface {
	// Run executes a command and returns its standard output.
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// DefaultExecutor executes commands using os/exec.
type DefaultExecutor struct{}

// Run executes a command and returns its standard output.
func (e *DefaultExecutor) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Include stderr in error message for debugging
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}

	return stdout.Bytes(), nil
}

// Client reads commit, branch and remote metadata from a local repository.
type Client struct {
	executor CommandExecutor
}

// NewClient creates a new Client with the default command executor.
func NewClient() *Client {
	return &Client{
		executor: &DefaultExecutor{},
	}
}

// NewClientWithExecutor creates a Client with a custom executor (for testing).
func NewClientWithExecutor(executor CommandExecutor) *Client {
	return &Client{
		executor: executor,
	}
}

// FromRepository collects the HEAD commit, the current branch and the
// configured remotes of the repository at dir.
// Returns *domain.UnavailableError if git is missing or dir is not a repository.
func (c *Client) FromRepository(ctx context.Context, dir string) (*domain.GitData, error) {
	branch, err := c.Branch(ctx, dir)
	if err != nil {
		return nil, err
	}

	commit, err := c.HeadCommit(ctx, dir)
	if err != nil {
		return nil, err
	}

	remotes, err := c.Remotes(ctx, dir)
	if err != nil {
		return nil, err
	}

	data := &domain.GitData{Commit: commit, Branch: branch, Remotes: []domain.GitRemote{}}
	for _, r := range remotes {
		data.AddRemote(r)
	}

	slog.Debug("Read git metadata", "dir", dir, "branch", branch, "commit", commit.ID, "remotes", len(data.Remotes))
	return data, nil
}

// Branch returns the abbreviated name of HEAD, or DetachedHead.
func (c *Client) Branch(ctx context.Context, dir string) (string, error) {
	output, err := c.executor.Run(ctx, dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", unavailable(dir, "git rev-parse failed", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// HeadCommit returns the identity and message of the HEAD commit.
func (c *Client) HeadCommit(ctx context.Context, dir string) (*domain.GitCommit, error) {
	output, err := c.executor.Run(ctx, dir, "git", "log", "-1", logFormat)
	if err != nil {
		return nil, unavailable(dir, "git log failed", err)
	}
	return parseLog(string(output))
}

// Remotes returns the configured remotes in the order git lists them,
// one entry per name.
func (c *Client) Remotes(ctx context.Context, dir string) ([]domain.GitRemote, error) {
	output, err := c.executor.Run(ctx, dir, "git", "remote", "-v")
	if err != nil {
		return nil, unavailable(dir, "git remote failed", err)
	}
	return parseRemotes(string(output)), nil
}

func parseLog(output string) (*domain.GitCommit, error) {
	parts := strings.SplitN(output, "\n", 6)
	if len(parts) < 5 {
		return nil, &domain.UnavailableError{Reason: fmt.Sprintf("unexpected git log output: %q", output)}
	}

	commit := &domain.GitCommit{
		ID:             strings.TrimSpace(parts[0]),
		AuthorName:     parts[1],
		AuthorEmail:    parts[2],
		CommitterName:  parts[3],
		CommitterEmail: parts[4],
	}
	if len(parts) == 6 {
		commit.Message = strings.TrimRight(parts[5], "\n")
	}
	return commit, nil
}

// parseRemotes parses `git remote -v` output. Each remote is listed once for
// fetch and once for push; the first URL per name is kept.
func parseRemotes(output string) []domain.GitRemote {
	var remotes []domain.GitRemote
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		url := NormalizeRemoteURL(fields[1])
		remotes = append(remotes, domain.GitRemote{Name: fields[0], URL: &url})
	}
	return remotes
}

func unavailable(dir, msg string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return &domain.UnavailableError{Reason: "git executable not found", Err: err}
	}
	return &domain.UnavailableError{Reason: fmt.Sprintf("%s in %s", msg, dir), Err: err}
}
