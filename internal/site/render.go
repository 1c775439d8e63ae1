package site

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/IQDevs/blog/internal/post"
)

// newMarkdown builds the goldmark instance used for post bodies. GFM covers
// tables/strikethrough/autolinks; unsafe rendering is on because posts embed
// raw HTML (videos, gists).
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// PostPage is the template-facing view of a rendered post.
type PostPage struct {
	Title      string
	Author     string
	Date       time.Time
	Permalink  string
	Categories []string
	Summary    string
	Content    template.HTML
}

// renderBody converts a markdown body to HTML.
func renderBody(md goldmark.Markdown, body []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// postPage builds the view model for a post, rendering its body.
func postPage(md goldmark.Markdown, p *post.Post) (*PostPage, error) {
	content, err := renderBody(md, p.Body)
	if err != nil {
		return nil, err
	}
	return &PostPage{
		Title:      p.Meta.Title,
		Author:     p.Meta.Author,
		Date:       p.Date,
		Permalink:  p.Permalink(),
		Categories: []string(p.Meta.Categories),
		Summary:    summaryFor(p),
		Content:    content,
	}, nil
}

// summaryFor prefers an explicit front-matter summary and otherwise takes the
// first paragraph of the body, stripped of markdown emphasis markers.
func summaryFor(p *post.Post) string {
	if p.Meta.Summary != "" {
		return p.Meta.Summary
	}
	text := strings.TrimSpace(string(p.Body))
	if text == "" {
		return ""
	}
	para := text
	if idx := strings.Index(text, "\n\n"); idx > 0 {
		para = text[:idx]
	}
	para = strings.Join(strings.Fields(para), " ")
	para = strings.NewReplacer("**", "", "*", "", "`", "", "_", "").Replace(para)
	if strings.HasPrefix(para, "#") {
		return ""
	}
	const maxSummary = 280
	if len(para) > maxSummary {
		cut := maxSummary
		// Back up to a rune boundary so multi-byte characters survive whole.
		for cut > 0 && !utf8.RuneStart(para[cut]) {
			cut--
		}
		para = para[:cut] + "…"
	}
	return para
}
