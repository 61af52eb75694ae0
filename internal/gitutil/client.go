// Package gitutil extracts the pending changes of a local Git repository.
package gitutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/go-git/go-git/v5"

	"github.com/xoho/code-reviewer/internal/core"
)

// Client handles interacting with Git repositories.
type Client struct {
	Logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// Open verifies that path is inside a Git repository.
func (c *Client) Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", core.ErrNoRepository, path)
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// Diff produces the ChangeSet of pending modifications under root. With
// staged set it diffs the index against HEAD instead of the worktree against
// the index. An empty diff is a valid, empty ChangeSet.
func (c *Client) Diff(ctx context.Context, root string, staged bool) (*core.ChangeSet, error) {
	if _, err := c.Open(root); err != nil {
		return nil, err
	}

	args := []string{"diff"}
	if staged {
		args = append(args, "--staged")
	}

	c.Logger.DebugContext(ctx, "extracting pending changes", "root", root, "staged", staged)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: git diff: %s: %s", core.ErrDiffUnavailable, err, stderr.String())
	}

	raw := stdout.String()
	cs := &core.ChangeSet{
		Raw:   raw,
		Files: ParseUnifiedDiff(raw),
	}

	c.Logger.DebugContext(ctx, "diff extracted", "files", len(cs.Files), "bytes", len(raw))
	return cs, nil
}
