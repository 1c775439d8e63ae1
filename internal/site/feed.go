package site

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// FeedPath is where the Atom feed lands in the output tree.
const FeedPath = "feed.xml"

// feedEntryLimit caps feed size; readers only care about recent posts.
const feedEntryLimit = 20

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	XMLNS    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Links    []atomLink  `xml:"link"`
	Author   *atomAuthor `xml:"author,omitempty"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Updated    string         `xml:"updated"`
	Link       atomLink       `xml:"link"`
	Author     *atomAuthor    `xml:"author,omitempty"`
	Summary    string         `xml:"summary,omitempty"`
	Content    *atomContent   `xml:"content,omitempty"`
	Categories []atomCategory `xml:"category"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

func (g *Generator) stageFeed(_ context.Context, bs *BuildState) error {
	base := strings.TrimRight(bs.Cfg.Site.BaseURL, "/")

	feed := atomFeed{
		XMLNS:    "http://www.w3.org/2005/Atom",
		Title:    bs.Cfg.Site.Title,
		Subtitle: bs.Cfg.Site.Description,
		ID:       base + "/",
		Updated:  time.Now().UTC().Format(time.RFC3339),
		Links: []atomLink{
			{Href: base + "/" + FeedPath, Rel: "self", Type: "application/atom+xml"},
			{Href: base + "/", Rel: "alternate"},
		},
	}
	if bs.Cfg.Site.Author != "" {
		feed.Author = &atomAuthor{Name: bs.Cfg.Site.Author}
	}

	pages := bs.Pages
	if len(pages) > feedEntryLimit {
		pages = pages[:feedEntryLimit]
	}
	if len(pages) > 0 {
		feed.Updated = pages[0].Date.UTC().Format(time.RFC3339)
	}

	for _, p := range pages {
		entry := atomEntry{
			Title:   p.Title,
			ID:      base + p.Permalink,
			Updated: p.Date.UTC().Format(time.RFC3339),
			Link:    atomLink{Href: base + p.Permalink, Rel: "alternate"},
			Summary: p.Summary,
			Content: &atomContent{Type: "html", Body: string(p.Content)},
		}
		if p.Author != "" {
			entry.Author = &atomAuthor{Name: p.Author}
		}
		for _, c := range p.Categories {
			entry.Categories = append(entry.Categories, atomCategory{Term: c})
		}
		feed.Entries = append(feed.Entries, entry)
	}

	body, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	out = append(out, '\n')

	if err := writeSiteFile(bs.StagingDir, FeedPath, out); err != nil {
		return err
	}
	bs.Report.PagesWritten++
	return nil
}
