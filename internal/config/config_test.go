package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  title: Test Blog
content:
  posts_dir: _posts
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "_site", cfg.Output.Directory)
	require.Equal(t, "main", cfg.Publish.Branch)
	require.Equal(t, "master", cfg.Publish.SourceBranch)
	require.Equal(t, RetryBackoffLinear, cfg.Publish.RetryBackoff)
	require.Equal(t, 4000, cfg.Serve.Port)
	require.Equal(t, ".blog/history.db", cfg.History.Path)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_PUBLISH_TOKEN", "sekrit")
	path := writeConfig(t, `
publish:
  url: https://example.com/site.git
  auth:
    type: token
    token: ${TEST_PUBLISH_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Publish.Auth)
	require.Equal(t, "sekrit", cfg.Publish.Auth.Token)
}

func TestLoad_EnvLocalOverridesEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ENVTEST_SITE_TITLE=from-env\nENVTEST_SITE_AUTHOR=author-env\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"),
		[]byte("ENVTEST_SITE_TITLE=from-local\n"), 0o644))
	t.Chdir(dir)
	// godotenv writes into the process environment; scrub after the test.
	t.Cleanup(func() {
		os.Unsetenv("ENVTEST_SITE_TITLE")
		os.Unsetenv("ENVTEST_SITE_AUTHOR")
	})

	path := writeConfig(t, `
site:
  title: ${ENVTEST_SITE_TITLE}
  author: ${ENVTEST_SITE_AUTHOR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-local", cfg.Site.Title)
	require.Equal(t, "author-env", cfg.Site.Author)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "configuration file not found")
}

func TestLoad_InvalidAuth_ReturnsValidationError(t *testing.T) {
	path := writeConfig(t, `
publish:
  auth:
    type: token
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "token auth requires a token")
}

func TestLoad_InvalidDuration_ReturnsValidationError(t *testing.T) {
	path := writeConfig(t, `
serve:
  quiet_window: nonsense
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "quiet_window")
}

func TestValidate_UnknownBackoffMode(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Publish.RetryBackoff = "bogus"
	require.Error(t, cfg.Validate())
}

func TestInit_WritesExample_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.yaml")

	require.NoError(t, Init(path, false))
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}

func TestInit_ExampleLoadsCleanly(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "placeholder")
	path := filepath.Join(t.TempDir(), "blog.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "IQDevs", cfg.Site.Title)
	require.Equal(t, "master", cfg.Publish.Branch)
}

func TestDurationAccessors_FallBackOnGarbage(t *testing.T) {
	p := PublishConfig{RetryInitialDelay: "zzz", RetryMaxDelay: "zzz"}
	require.Equal(t, "1s", p.RetryInitial().String())
	require.Equal(t, "30s", p.RetryMax().String())
}
