package lint

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const goodPost = `---
layout: post
title: Golang Deployed
date: 2017-03-20
categories: golang
author: Alice
uid: 9f3b5c1e-1111-2222-3333-444455556666
---
Body.
`

func writeLintFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLintPathCleanPost(t *testing.T) {
	dir := t.TempDir()
	writeLintFile(t, dir, "2017-03-20-Golang-Deployed.markdown", goodPost)

	result, err := NewLinter(nil).LintPath(dir)
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesTotal)
	require.Empty(t, result.Issues)
	require.False(t, result.HasErrors())
}

func TestLintPathSkipsNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeLintFile(t, dir, "notes.txt", "not a post")
	writeLintFile(t, dir, ".hidden.markdown", "ignored")

	result, err := NewLinter(nil).LintPath(dir)
	require.NoError(t, err)
	require.Equal(t, 0, result.FilesTotal)
}

func TestLintPathBadFilename(t *testing.T) {
	dir := t.TempDir()
	writeLintFile(t, dir, "My Post.markdown", goodPost)

	result, err := NewLinter(nil).LintPath(dir)
	require.NoError(t, err)
	require.True(t, result.HasErrors())

	found := false
	for _, issue := range result.Issues {
		if issue.Rule == "post-filename" && issue.Severity == SeverityError {
			found = true
			require.Contains(t, issue.Fix, "2017-03-20-My-Post.markdown")
		}
	}
	require.True(t, found)
}

func TestLintQuietHidesWarningsButKeepsThemInResult(t *testing.T) {
	dir := t.TempDir()
	// Missing uid produces only a warning.
	writeLintFile(t, dir, "2017-03-20-No-UID.markdown", `---
layout: post
title: No UID
date: 2017-03-20
categories: golang
author: Alice
---
Body.
`)

	result, err := NewLinter(&Config{Quiet: true}).LintPath(dir)
	require.NoError(t, err)
	require.False(t, result.HasErrors())
	require.True(t, result.HasWarnings())
	require.Equal(t, 1, result.WarningCount())

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text", true).Format(&buf, result, dir))
	require.NotContains(t, buf.String(), "Missing 'uid'")
	require.Contains(t, buf.String(), "1 warning")

	buf.Reset()
	require.NoError(t, NewFormatter("text", false).Format(&buf, result, dir))
	require.Contains(t, buf.String(), "Missing 'uid'")
}

func TestLintFilesSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	existing := writeLintFile(t, dir, "2017-03-20-Real.markdown", goodPost)

	result, err := NewLinter(nil).LintFiles([]string{
		existing,
		filepath.Join(dir, "2017-03-20-Gone.markdown"),
		filepath.Join(dir, "script.sh"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesTotal)
}
