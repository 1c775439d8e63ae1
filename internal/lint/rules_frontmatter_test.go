package lint

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func frontMatterIssues(t *testing.T, dir, name, content string) []Issue {
	t.Helper()
	p := writeLintFile(t, dir, name, content)
	issues, err := (&FrontMatterRule{}).Check(p)
	require.NoError(t, err)
	return issues
}

func TestFrontMatterRuleComplete(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-OK.markdown", goodPost)
	require.Empty(t, issues)
}

func TestFrontMatterRuleMissingBlock(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-Bare.markdown", "Just body text.\n")
	require.Len(t, issues, 1)
	require.Equal(t, SeverityError, issues[0].Severity)
	require.Contains(t, issues[0].Message, "Missing front matter")
}

func TestFrontMatterRuleUnclosedBlock(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-Broken.markdown", "---\ntitle: Oops\n")
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "Malformed front matter")
}

func TestFrontMatterRuleInvalidYAML(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-BadYAML.markdown", "---\ntitle: [unterminated\n---\nBody.\n")
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "Invalid front matter")
}

func TestFrontMatterRuleMissingRequiredFields(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-Thin.markdown", `---
title: Thin Post
date: 2017-03-20
uid: abc
---
Body.
`)
	var missing []string
	for _, issue := range issues {
		require.Equal(t, SeverityError, issue.Severity)
		missing = append(missing, issue.Message)
	}
	require.Len(t, missing, 3) // layout, categories, author
}

func TestFrontMatterRuleDateMismatchWarns(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-Offset.markdown", `---
layout: post
title: Offset
date: 2017-03-21
categories: golang
author: Alice
uid: abc
---
Body.
`)
	require.Len(t, issues, 1)
	require.Equal(t, SeverityWarning, issues[0].Severity)
	require.Contains(t, issues[0].Message, "does not match filename date")
}

func TestFrontMatterRuleDateOnlyFormats(t *testing.T) {
	// YAML resolves a bare date scalar to time.Time and a quoted one to a
	// string; both are valid post dates.
	for name, field := range map[string]string{
		"bare":   `date: 2017-03-20`,
		"quoted": `date: "2017-03-20"`,
	} {
		t.Run(name, func(t *testing.T) {
			issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-Dated.markdown", fmt.Sprintf(`---
layout: post
title: Dated
%s
categories: golang
author: Alice
uid: abc
---
Body.
`, field))
			require.Empty(t, issues)
		})
	}
}

func TestFrontMatterRuleUnparseableDate(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-BadDate.markdown", `---
layout: post
title: Bad Date
date: March 20th
categories: golang
author: Alice
uid: abc
---
Body.
`)
	require.Len(t, issues, 1)
	require.Equal(t, SeverityError, issues[0].Severity)
	require.Contains(t, issues[0].Message, "Unparseable front-matter date")
}

func TestFrontMatterRuleMissingUIDWarns(t *testing.T) {
	issues := frontMatterIssues(t, t.TempDir(), "2017-03-20-NoUID.markdown", `---
layout: post
title: No UID
date: 2017-03-20
categories: golang
author: Alice
---
Body.
`)
	require.Len(t, issues, 1)
	require.Equal(t, SeverityWarning, issues[0].Severity)
	require.Contains(t, issues[0].Message, "uid")
}
