package publish

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

	"github.com/IQDevs/blog/internal/config"
)

// initContentRepo creates a content repository on the given branch. The
// returned path is where the branch gate looks.
func initContentRepo(t *testing.T, branch string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.yaml"), []byte("site:\n  title: t\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("blog.yaml")
	require.NoError(t, err)
	_, err = wt.Commit("init", &gogit.CommitOptions{
		Author: &object.Signature{Name: "a", Email: "a@test", When: time.Now()},
	})
	require.NoError(t, err)

	if branch != "master" {
		require.NoError(t, wt.Checkout(&gogit.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(branch),
			Create: true,
		}))
	}
	return dir
}

func initPublishRemote(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	remotePath := filepath.Join(root, "remote.git")
	_, err := gogit.PlainInit(remotePath, true)
	require.NoError(t, err)

	seedPath := filepath.Join(root, "seed")
	seed, err := gogit.PlainInit(seedPath, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(seedPath, "index.html"), []byte("old"), 0o644))
	wt, err := seed.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("index.html")
	require.NoError(t, err)
	_, err = wt.Commit("seed", &gogit.CommitOptions{
		Author: &object.Signature{Name: "s", Email: "s@test", When: time.Now()},
	})
	require.NoError(t, err)
	_, err = seed.CreateRemote(&gitcfg.RemoteConfig{Name: "origin", URLs: []string{remotePath}})
	require.NoError(t, err)
	require.NoError(t, seed.Push(&gogit.PushOptions{
		RefSpecs: []gitcfg.RefSpec{"refs/heads/master:refs/heads/master"},
	}))
	return remotePath
}

func publishConfig(remote string) *config.Config {
	return &config.Config{
		Publish: config.PublishConfig{
			URL:          remote,
			Branch:       "master",
			SourceBranch: "master",
			Committer:    config.Committer{Name: "Deploy", Email: "deploy@test"},
			MaxRetries:   1,
			RetryBackoff: config.RetryBackoffFixed,
		},
	}
}

func builtSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>new</html>"), 0o644))
	return dir
}

func TestPublishHappyPath(t *testing.T) {
	remote := initPublishRemote(t)
	content := initContentRepo(t, "master")
	cfg := publishConfig(remote)

	pub := NewPublisher(cfg).WithContentDir(content).WithWorkspaceDir(t.TempDir())
	result, err := pub.Publish(context.Background(), builtSite(t))
	require.NoError(t, err)
	require.NotEmpty(t, result.Commit)
	require.Equal(t, "master", result.Branch)
	require.Equal(t, 1, result.Attempts)

	bare, err := gogit.PlainOpen(remote)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(t, err)
	require.Equal(t, result.Commit, ref.Hash().String())
}

func TestPublishBranchGateBlocks(t *testing.T) {
	remote := initPublishRemote(t)
	content := initContentRepo(t, "feature-x")
	cfg := publishConfig(remote)

	pub := NewPublisher(cfg).WithContentDir(content).WithWorkspaceDir(t.TempDir())
	_, err := pub.Publish(context.Background(), builtSite(t))
	require.ErrorIs(t, err, ErrBranchGate)
}

func TestPublishGateDisabledWhenEmpty(t *testing.T) {
	remote := initPublishRemote(t)
	content := initContentRepo(t, "feature-x")
	cfg := publishConfig(remote)
	cfg.Publish.SourceBranch = ""

	pub := NewPublisher(cfg).WithContentDir(content).WithWorkspaceDir(t.TempDir())
	_, err := pub.Publish(context.Background(), builtSite(t))
	require.NoError(t, err)
}

func TestPublishNoChanges(t *testing.T) {
	remote := initPublishRemote(t)
	content := initContentRepo(t, "master")
	cfg := publishConfig(remote)

	site := builtSite(t)
	pub := NewPublisher(cfg).WithContentDir(content).WithWorkspaceDir(t.TempDir())
	_, err := pub.Publish(context.Background(), site)
	require.NoError(t, err)

	// Publishing the identical site again is a no-op.
	_, err = pub.Publish(context.Background(), site)
	require.ErrorIs(t, err, ErrNoChanges)
}

func TestPublishReusesPersistentCheckout(t *testing.T) {
	remote := initPublishRemote(t)
	content := initContentRepo(t, "master")
	cfg := publishConfig(remote)
	wsDir := t.TempDir()

	pub := NewPublisher(cfg).WithContentDir(content).WithWorkspaceDir(wsDir)
	_, err := pub.Publish(context.Background(), builtSite(t))
	require.NoError(t, err)

	// A reclone would wipe the checkout directory, taking the marker with it.
	checkout := filepath.Join(wsDir, "workspace", "publish")
	marker := filepath.Join(checkout, ".git", "reuse-marker")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	site2 := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(site2, "index.html"), []byte("<html>v2</html>"), 0o644))
	result, err := pub.Publish(context.Background(), site2)
	require.NoError(t, err)
	require.NotEmpty(t, result.Commit)

	_, err = os.Stat(marker)
	require.NoError(t, err)
}

func TestPublishMissingRemoteFailsWithoutRetry(t *testing.T) {
	content := initContentRepo(t, "master")
	cfg := publishConfig(filepath.Join(t.TempDir(), "does-not-exist.git"))
	cfg.Publish.MaxRetries = 3
	cfg.Publish.RetryInitialDelay = "10ms"

	pub := NewPublisher(cfg).WithContentDir(content).WithWorkspaceDir(t.TempDir())
	start := time.Now()
	_, err := pub.Publish(context.Background(), builtSite(t))
	require.Error(t, err)
	// A missing repository is permanent; retries would take 30ms+.
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestPublishMissingURL(t *testing.T) {
	content := initContentRepo(t, "master")
	cfg := publishConfig("")

	pub := NewPublisher(cfg).WithContentDir(content).WithWorkspaceDir(t.TempDir())
	_, err := pub.Publish(context.Background(), builtSite(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "publish.url")
}
