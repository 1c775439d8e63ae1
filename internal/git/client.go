// Package git wraps go-git operations on the publish repository: clone or
// update a checkout, replace its contents, commit, and push.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	appcfg "github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/logfields"
)

// ErrNothingToCommit is returned by CommitAll when the worktree is clean.
var ErrNothingToCommit = errors.New("nothing to commit")

// Client manages checkouts under a workspace directory.
type Client struct {
	workspaceDir string
}

// NewClient creates a git client keeping checkouts under workspaceDir.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir}
}

// Checkout is a cloned publish repository.
type Checkout struct {
	Path   string
	repo   *gogit.Repository
	branch string
	url    string
	auth   transport.AuthMethod
}

// CloneOrUpdate clones the publish repository into the workspace, or fetches
// and resets an existing checkout. The target branch is checked out; if it
// does not exist remotely, an orphan local branch is created.
func (c *Client) CloneOrUpdate(ctx context.Context, pub appcfg.PublishConfig) (*Checkout, error) {
	auth, err := NewAuth(pub.Auth)
	if err != nil {
		return nil, err
	}

	repoPath := filepath.Join(c.workspaceDir, "publish")
	branch := pub.Branch

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		co, err := c.update(ctx, repoPath, pub.URL, branch, auth)
		if err == nil {
			return co, nil
		}
		slog.Warn("Failed to update existing checkout, recloning", logfields.Path(repoPath), logfields.Error(err))
		if err := os.RemoveAll(repoPath); err != nil {
			return nil, fmt.Errorf("remove stale checkout: %w", err)
		}
	}

	return c.clone(ctx, repoPath, pub.URL, branch, auth)
}

func (c *Client) clone(ctx context.Context, repoPath, url, branch string, auth transport.AuthMethod) (*Checkout, error) {
	slog.Debug("Cloning publish repository", logfields.Remote(url), logfields.Branch(branch), logfields.Path(repoPath))

	opts := &gogit.CloneOptions{
		URL:           url,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	}
	repo, err := gogit.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		if isMissingBranch(err) {
			return c.cloneOrphan(ctx, repoPath, url, branch, auth)
		}
		return nil, classifyError("clone", url, err)
	}

	slog.Info("Publish repository cloned", logfields.Remote(url), logfields.Branch(branch))
	return &Checkout{Path: repoPath, repo: repo, branch: branch, url: url, auth: auth}, nil
}

// isMissingBranch reports whether a clone failed because the remote does not
// have the requested branch.
func isMissingBranch(err error) bool {
	var noRef gogit.NoMatchingRefSpecError
	return errors.Is(err, plumbing.ErrReferenceNotFound) ||
		errors.As(err, &noRef) ||
		strings.Contains(err.Error(), "couldn't find remote ref")
}

// cloneOrphan handles a publish branch that does not exist yet: clone the
// default branch, then create the target branch from scratch.
func (c *Client) cloneOrphan(ctx context.Context, repoPath, url, branch string, auth transport.AuthMethod) (*Checkout, error) {
	if err := os.RemoveAll(repoPath); err != nil {
		return nil, fmt.Errorf("remove partial checkout: %w", err)
	}
	repo, err := gogit.PlainCloneContext(ctx, repoPath, false, &gogit.CloneOptions{URL: url, Auth: auth})
	if err != nil {
		return nil, classifyError("clone", url, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}); err != nil {
		return nil, fmt.Errorf("create branch %s: %w", branch, err)
	}

	slog.Info("Created new publish branch", logfields.Remote(url), logfields.Branch(branch))
	return &Checkout{Path: repoPath, repo: repo, branch: branch, url: url, auth: auth}, nil
}

func (c *Client) update(ctx context.Context, repoPath, url, branch string, auth transport.AuthMethod) (*Checkout, error) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open checkout: %w", err)
	}

	err = repo.FetchContext(ctx, &gogit.FetchOptions{Auth: auth, Force: true})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil, classifyError("fetch", url, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err == nil {
		if err := wt.Checkout(&gogit.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(branch),
			Force:  true,
		}); err != nil {
			// Local branch may not exist yet.
			if err := wt.Checkout(&gogit.CheckoutOptions{
				Branch: plumbing.NewBranchReferenceName(branch),
				Hash:   remoteRef.Hash(),
				Create: true,
			}); err != nil {
				return nil, fmt.Errorf("checkout %s: %w", branch, err)
			}
		}
		if err := wt.Reset(&gogit.ResetOptions{Commit: remoteRef.Hash(), Mode: gogit.HardReset}); err != nil {
			return nil, fmt.Errorf("reset to origin/%s: %w", branch, err)
		}
	} else if err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Force:  true,
	}); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", branch, err)
	}

	slog.Debug("Publish checkout updated", logfields.Path(repoPath), logfields.Branch(branch))
	return &Checkout{Path: repoPath, repo: repo, branch: branch, url: url, auth: auth}, nil
}

// ReplaceContents clears the worktree (keeping .git and preserved names) and
// copies srcDir into it.
func (co *Checkout) ReplaceContents(srcDir string, preserve []string) error {
	keep := map[string]bool{".git": true}
	for _, name := range preserve {
		keep[name] = true
	}

	entries, err := os.ReadDir(co.Path)
	if err != nil {
		return fmt.Errorf("read checkout: %w", err)
	}
	for _, entry := range entries {
		if keep[entry.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(co.Path, entry.Name())); err != nil {
			return fmt.Errorf("clear checkout: %w", err)
		}
	}

	return copyDir(srcDir, co.Path)
}

// CommitAll stages everything and commits. Returns ErrNothingToCommit when
// the worktree matches HEAD.
func (co *Checkout) CommitAll(message string, committer appcfg.Committer) (string, error) {
	wt, err := co.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("stage changes: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}
	if status.IsClean() {
		return "", ErrNothingToCommit
	}

	name := committer.Name
	if name == "" {
		name = "blog"
	}
	email := committer.Email
	if email == "" {
		email = "blog@localhost"
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: time.Now()},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	slog.Info("Committed site changes", logfields.Commit(hash.String()[:8]), logfields.Branch(co.branch))
	return hash.String(), nil
}

// Push pushes the publish branch to origin.
func (co *Checkout) Push(ctx context.Context) error {
	refspec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", co.branch, co.branch))
	err := co.repo.PushContext(ctx, &gogit.PushOptions{
		Auth:     co.auth,
		RefSpecs: []config.RefSpec{refspec},
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return classifyError("push", co.url, err)
	}
	slog.Info("Pushed publish branch", logfields.Remote(co.url), logfields.Branch(co.branch))
	return nil
}

// CurrentBranch returns the branch name HEAD points at in the repository
// containing dir, walking up to find the repository root.
func CurrentBranch(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository at %s: %w", dir, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !ref.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", ref.Hash().String()[:8])
	}
	return ref.Name().Short(), nil
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := os.MkdirAll(dstPath, 0o755); err != nil {
				return err
			}
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := os.WriteFile(dstPath, data, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}
