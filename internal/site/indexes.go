package site

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/IQDevs/blog/internal/post"
)

// pageContent holds the page-specific fields the layouts read. Exactly one
// group is populated per page kind.
type pageContent struct {
	Post    *PostPage
	Posts   []*PostPage
	Heading string
	Years   []yearGroup
	Terms   []term
}

type yearGroup struct {
	Year  int
	Posts []*PostPage
}

type term struct {
	Name  string
	URL   string
	Count int
}

// pageData is what every template execution receives.
type pageData struct {
	Site  siteInfo
	Title string
	Year  int
	*pageContent
}

// siteInfo mirrors the site section of the config for templates.
type siteInfo struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Language    string
}

func (g *Generator) pageData(title string, c *pageContent) pageData {
	lang := g.cfg.Site.Language
	if lang == "" {
		lang = "en"
	}
	return pageData{
		Site: siteInfo{
			Title:       g.cfg.Site.Title,
			Description: g.cfg.Site.Description,
			BaseURL:     g.cfg.Site.BaseURL,
			Author:      g.cfg.Site.Author,
			Language:    lang,
		},
		Title:       title,
		Year:        time.Now().Year(),
		pageContent: c,
	}
}

// indexPageSize caps the number of posts shown on the home page.
const indexPageSize = 20

func (g *Generator) stageIndexes(_ context.Context, bs *BuildState) error {
	if err := g.writeHome(bs); err != nil {
		return err
	}
	if err := g.writeArchive(bs); err != nil {
		return err
	}
	if err := g.writeTaxonomy(bs, "Categories", "categories", categoryIndex(bs)); err != nil {
		return err
	}
	if err := g.writeTaxonomy(bs, "Authors", "authors", authorIndex(bs)); err != nil {
		return err
	}
	return nil
}

func (g *Generator) writeHome(bs *BuildState) error {
	recent := bs.Pages
	if len(recent) > indexPageSize {
		recent = recent[:indexPageSize]
	}
	out, err := bs.Tpls.Execute("index", g.pageData("", &pageContent{Posts: recent}))
	if err != nil {
		return fmt.Errorf("home page: %w", err)
	}
	if err := writeSiteFile(bs.StagingDir, "index.html", out); err != nil {
		return err
	}
	bs.Report.PagesWritten++
	return nil
}

func (g *Generator) writeArchive(bs *BuildState) error {
	var years []yearGroup
	for _, p := range bs.Pages {
		y := p.Date.Year()
		if len(years) == 0 || years[len(years)-1].Year != y {
			years = append(years, yearGroup{Year: y})
		}
		last := &years[len(years)-1]
		last.Posts = append(last.Posts, p)
	}

	out, err := bs.Tpls.Execute("archive", g.pageData("Archive", &pageContent{Years: years}))
	if err != nil {
		return fmt.Errorf("archive page: %w", err)
	}
	if err := writeSiteFile(bs.StagingDir, filepath.Join("archive", "index.html"), out); err != nil {
		return err
	}
	bs.Report.PagesWritten++
	return nil
}

// categoryIndex groups pages by category name.
func categoryIndex(bs *BuildState) map[string][]*PostPage {
	idx := map[string][]*PostPage{}
	for _, p := range bs.Pages {
		for _, c := range p.Categories {
			idx[c] = append(idx[c], p)
		}
	}
	return idx
}

// authorIndex groups pages by author name.
func authorIndex(bs *BuildState) map[string][]*PostPage {
	idx := map[string][]*PostPage{}
	for _, p := range bs.Pages {
		if p.Author == "" {
			continue
		}
		idx[p.Author] = append(idx[p.Author], p)
	}
	return idx
}

// writeTaxonomy writes one list page per term under baseDir plus a terms
// index at baseDir/index.html.
func (g *Generator) writeTaxonomy(bs *BuildState, heading, baseDir string, index map[string][]*PostPage) error {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	var terms []term
	for _, name := range names {
		slug := post.Slugify(name)
		pages := index[name]
		terms = append(terms, term{
			Name:  name,
			URL:   "/" + baseDir + "/" + slug + "/",
			Count: len(pages),
		})

		out, err := bs.Tpls.Execute("list", g.pageData(name, &pageContent{Heading: name, Posts: pages}))
		if err != nil {
			return fmt.Errorf("%s page %s: %w", baseDir, name, err)
		}
		if err := writeSiteFile(bs.StagingDir, filepath.Join(baseDir, slug, "index.html"), out); err != nil {
			return err
		}
		bs.Report.PagesWritten++
	}

	out, err := bs.Tpls.Execute("terms", g.pageData(heading, &pageContent{Heading: heading, Terms: terms}))
	if err != nil {
		return fmt.Errorf("%s index: %w", baseDir, err)
	}
	if err := writeSiteFile(bs.StagingDir, filepath.Join(baseDir, "index.html"), out); err != nil {
		return err
	}
	bs.Report.PagesWritten++
	return nil
}
