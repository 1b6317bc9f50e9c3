package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Client clones repositories and reads files from them
type Client interface {
	// Clone clones the source into memory
	Clone(ctx context.Context, src *Source) (*Checkout, error)
	// ReadFile returns the content of path at the checked out commit
	ReadFile(co *Checkout, path string) ([]byte, error)
	// Release frees the memory held by the checkout
	Release(co *Checkout) error
}

type client struct {
	maxFiles int64
	maxBytes int64
}

// NewClient creates a client whose clones are limited to 10k files and
// 100MB per filesystem.
func NewClient() Client {
	return &client{maxFiles: defaultMaxFiles, maxBytes: defaultMaxTotalBytes}
}

// Clone clones the source into memory
func (c *client) Clone(ctx context.Context, src *Source) (*Checkout, error) {
	if src == nil || src.URL == "" {
		return nil, errors.New("repository URL is required")
	}

	opts := &git.CloneOptions{URL: src.URL}
	if src.Auth != nil && src.Auth.Username != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: src.Auth.Username,
			Password: src.Auth.Password,
		}
		slog.DebugContext(ctx, "Using Git HTTP basic authentication", "username", src.Auth.Username)
	}

	// A commit checkout needs the full history.
	if src.Commit == "" {
		opts.Depth = 1
		switch {
		case src.Branch != "":
			opts.ReferenceName = plumbing.NewBranchReferenceName(src.Branch)
			opts.SingleBranch = true
		case src.Tag != "":
			opts.ReferenceName = plumbing.NewTagReferenceName(src.Tag)
			opts.SingleBranch = true
		}
	}

	worktreeFS := newLimitedFS(memfs.New(), c.maxFiles, c.maxBytes)
	storerFS := newLimitedFS(memfs.New(), c.maxFiles, c.maxBytes)
	objectCache := cache.NewObjectLRUDefault()

	repo, err := git.CloneContext(ctx, filesystem.NewStorage(storerFS, objectCache), worktreeFS, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	co := &Checkout{
		Repository:  repo,
		storerFS:    storerFS,
		objectCache: objectCache,
	}

	if src.Commit != "" {
		wt, err := repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("failed to get worktree: %w", err)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(src.Commit)}); err != nil {
			return nil, fmt.Errorf("failed to checkout commit %s: %w", src.Commit, err)
		}
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if head.Name().IsBranch() {
		co.Branch = head.Name().Short()
	}
	co.Commit = head.Hash().String()

	slog.DebugContext(ctx, "Cloned repository", "url", src.URL, "branch", co.Branch, "commit", co.Commit)
	return co, nil
}

// ReadFile returns the content of path at the checked out commit
func (*client) ReadFile(co *Checkout, path string) ([]byte, error) {
	if co == nil || co.Repository == nil {
		return nil, errors.New("repository is nil")
	}

	head, err := co.Repository.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	commit, err := co.Repository.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", path, err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return []byte(content), nil
}

// Release frees the memory held by the checkout
func (*client) Release(co *Checkout) error {
	if co == nil || co.Repository == nil {
		return errors.New("repository is nil")
	}

	if co.objectCache != nil {
		co.objectCache.Clear()
	}
	if wt, err := co.Repository.Worktree(); err == nil && wt.Filesystem != nil {
		_ = util.RemoveAll(wt.Filesystem, "/")
	}
	if co.storerFS != nil {
		_ = util.RemoveAll(co.storerFS, "/")
	}

	co.objectCache = nil
	co.storerFS = nil
	co.Repository = nil
	return nil
}

// ReadFile clones src, reads path and releases the clone
func ReadFile(ctx context.Context, c Client, src *Source, path string) ([]byte, error) {
	co, err := c.Clone(ctx, src)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := c.Release(co); err != nil {
			slog.WarnContext(ctx, "Failed to release repository", "url", src.URL, "error", err)
		}
	}()
	return c.ReadFile(co, path)
}
