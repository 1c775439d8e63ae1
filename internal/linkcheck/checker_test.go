package linkcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestCheckAllLinksResolve(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html": `<html><body>
			<a href="/2017/03/20/golang-deployed/">Post</a>
			<img src="/img/logo.png" alt="logo">
			<link rel="stylesheet" href="/css/main.css">
		</body></html>`,
		"2017/03/20/golang-deployed/index.html": `<html><body><a href="/">Home</a></body></html>`,
		"img/logo.png":                          "png",
		"css/main.css":                          "body{}",
	})

	result, err := NewChecker(root, "https://iqdevs.example").Check()
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, 2, result.PagesChecked)
	require.Equal(t, 4, result.LinksChecked)
}

func TestCheckReportsMissingTargets(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html": `<html><body>
			<a href="/2017/03/20/gone/">Gone post</a>
			<img src="/img/missing.png">
		</body></html>`,
	})

	result, err := NewChecker(root, "https://iqdevs.example").Check()
	require.NoError(t, err)
	require.False(t, result.OK())
	require.Len(t, result.Broken, 2)

	urls := []string{result.Broken[0].URL, result.Broken[1].URL}
	require.Contains(t, urls, "/2017/03/20/gone/")
	require.Contains(t, urls, "/img/missing.png")
}

func TestCheckSkipsExternalAndAnchors(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html": `<html><body>
			<a href="https://example.org/elsewhere">External</a>
			<a href="#section">Anchor</a>
			<a href="mailto:team@iqdevs.example">Mail</a>
		</body></html>`,
	})

	result, err := NewChecker(root, "https://iqdevs.example").Check()
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, 0, result.LinksChecked)
}

func TestCheckAbsoluteURLOnOwnHostIsInternal(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":       `<html><body><a href="https://iqdevs.example/about/">About</a></body></html>`,
		"about/index.html": `<html><body>About</body></html>`,
	})

	result, err := NewChecker(root, "https://iqdevs.example").Check()
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, 1, result.LinksChecked)
}

func TestCheckRelativeLinks(t *testing.T) {
	root := writeSite(t, map[string]string{
		"posts/index.html": `<html><body><a href="../img/chart.svg">Chart</a></body></html>`,
		"img/chart.svg":    "<svg/>",
	})

	result, err := NewChecker(root, "").Check()
	require.NoError(t, err)
	require.True(t, result.OK())
}

func TestCheckDirectoryWithoutIndex(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":     `<html><body><a href="/empty/">Empty</a></body></html>`,
		"empty/.gitkeep": "",
	})

	result, err := NewChecker(root, "").Check()
	require.NoError(t, err)
	require.Len(t, result.Broken, 1)
	require.True(t, strings.Contains(result.Broken[0].Reason, "index.html"))
}

func TestExtractLinksFromReader(t *testing.T) {
	links, err := ExtractLinksFromReader(strings.NewReader(
		`<html><body><a href="/a/">A</a><script src="/js/app.js"></script></body></html>`),
		"https://iqdevs.example")
	require.NoError(t, err)
	require.Len(t, links, 2)
	require.Equal(t, "a", links[0].Tag)
	require.Equal(t, "A", links[0].Text)
	require.True(t, links[0].IsInternal)
	require.Equal(t, "script", links[1].Tag)
}
