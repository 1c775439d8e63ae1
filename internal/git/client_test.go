package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	appcfg "github.com/IQDevs/blog/internal/config"
)

// initRemote creates a bare repository seeded with one commit on master and
// returns its path.
func initRemote(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	remotePath := filepath.Join(root, "remote.git")
	_, err := gogit.PlainInit(remotePath, true)
	require.NoError(t, err)

	seedPath := filepath.Join(root, "seed")
	seed, err := gogit.PlainInit(seedPath, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(seedPath, "README.md"), []byte("# site\n"), 0o644))
	wt, err := seed.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "seed", Email: "seed@test", When: time.Now()},
	})
	require.NoError(t, err)

	_, err = seed.CreateRemote(&gitcfg.RemoteConfig{Name: "origin", URLs: []string{remotePath}})
	require.NoError(t, err)
	require.NoError(t, seed.Push(&gogit.PushOptions{
		RefSpecs: []gitcfg.RefSpec{"refs/heads/master:refs/heads/master"},
	}))

	return remotePath
}

func siteDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func TestCloneCommitPush(t *testing.T) {
	remote := initRemote(t)
	client := NewClient(t.TempDir())

	pub := appcfg.PublishConfig{URL: remote, Branch: "master"}
	co, err := client.CloneOrUpdate(context.Background(), pub)
	require.NoError(t, err)

	site := siteDir(t, map[string]string{
		"index.html":              "<html>home</html>",
		"2017/03/20/p/index.html": "<html>post</html>",
	})
	require.NoError(t, co.ReplaceContents(site, nil))

	// Old content gone, new content present.
	_, err = os.Stat(filepath.Join(co.Path, "README.md"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(co.Path, "index.html"))
	require.NoError(t, err)

	hash, err := co.CommitAll("Publish site", appcfg.Committer{Name: "Deploy", Email: "deploy@test"})
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	require.NoError(t, co.Push(context.Background()))

	// Remote branch advanced to the new commit.
	bare, err := gogit.PlainOpen(remote)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(t, err)
	require.Equal(t, hash, ref.Hash().String())
}

func TestCommitAllCleanWorktree(t *testing.T) {
	remote := initRemote(t)
	client := NewClient(t.TempDir())

	co, err := client.CloneOrUpdate(context.Background(), appcfg.PublishConfig{URL: remote, Branch: "master"})
	require.NoError(t, err)

	_, err = co.CommitAll("no changes", appcfg.Committer{})
	require.ErrorIs(t, err, ErrNothingToCommit)
}

func TestCloneMissingBranchCreatesIt(t *testing.T) {
	remote := initRemote(t)
	client := NewClient(t.TempDir())

	co, err := client.CloneOrUpdate(context.Background(), appcfg.PublishConfig{URL: remote, Branch: "gh-pages"})
	require.NoError(t, err)

	site := siteDir(t, map[string]string{"index.html": "<html>v1</html>"})
	require.NoError(t, co.ReplaceContents(site, nil))
	hash, err := co.CommitAll("Publish site", appcfg.Committer{})
	require.NoError(t, err)
	require.NoError(t, co.Push(context.Background()))

	bare, err := gogit.PlainOpen(remote)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("gh-pages"), true)
	require.NoError(t, err)
	require.Equal(t, hash, ref.Hash().String())
}

func TestCloneOrUpdateReusesCheckout(t *testing.T) {
	remote := initRemote(t)
	workspace := t.TempDir()
	client := NewClient(workspace)

	pub := appcfg.PublishConfig{URL: remote, Branch: "master"}
	first, err := client.CloneOrUpdate(context.Background(), pub)
	require.NoError(t, err)

	second, err := client.CloneOrUpdate(context.Background(), pub)
	require.NoError(t, err)
	require.Equal(t, first.Path, second.Path)
}

func TestReplaceContentsPreserves(t *testing.T) {
	remote := initRemote(t)
	client := NewClient(t.TempDir())

	co, err := client.CloneOrUpdate(context.Background(), appcfg.PublishConfig{URL: remote, Branch: "master"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(co.Path, "CNAME"), []byte("iqdevs.example\n"), 0o644))

	site := siteDir(t, map[string]string{"index.html": "<html/>"})
	require.NoError(t, co.ReplaceContents(site, []string{"CNAME"}))

	_, err = os.Stat(filepath.Join(co.Path, "CNAME"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(co.Path, "README.md"))
	require.True(t, os.IsNotExist(err))
}

func TestCurrentBranch(t *testing.T) {
	root := t.TempDir()
	repo, err := gogit.PlainInit(root, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), []byte("x"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("f")
	require.NoError(t, err)
	_, err = wt.Commit("c", &gogit.CommitOptions{
		Author: &object.Signature{Name: "a", Email: "a@test", When: time.Now()},
	})
	require.NoError(t, err)

	// Works from a subdirectory via .git discovery.
	sub := filepath.Join(root, "_posts")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	branch, err := CurrentBranch(sub)
	require.NoError(t, err)
	require.Equal(t, "master", branch)
}

func TestCurrentBranchOutsideRepo(t *testing.T) {
	_, err := CurrentBranch(t.TempDir())
	require.Error(t, err)
}

func TestIsPermanent(t *testing.T) {
	require.True(t, IsPermanent(&AuthError{Op: "push", URL: "u"}))
	require.True(t, IsPermanent(&NotFoundError{Op: "clone", URL: "u"}))
	require.False(t, IsPermanent(&RateLimitError{Op: "push", URL: "u"}))
	require.False(t, IsPermanent(&NetworkTimeoutError{Op: "push", URL: "u"}))
	require.False(t, IsPermanent(nil))
}
