package linkcheck

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/IQDevs/blog/internal/logfields"
)

// BrokenLink describes an internal link whose target does not exist in the
// output tree.
type BrokenLink struct {
	SourcePath string // HTML file containing the link, relative to the site root
	URL        string // Link target as written
	Tag        string
	Reason     string
}

// Result summarizes a link check run.
type Result struct {
	PagesChecked int
	LinksChecked int
	Broken       []BrokenLink
}

// OK reports whether no broken links were found.
func (r *Result) OK() bool { return len(r.Broken) == 0 }

// Checker walks a rendered site directory and verifies every internal link
// resolves to a file.
type Checker struct {
	siteDir string
	baseURL string
}

// NewChecker creates a checker for the rendered site at siteDir. baseURL is
// used to classify absolute URLs pointing back at this site as internal.
func NewChecker(siteDir, baseURL string) *Checker {
	return &Checker{siteDir: siteDir, baseURL: baseURL}
}

// Check verifies all pages under the site directory.
func (c *Checker) Check() (*Result, error) {
	info, err := os.Stat(c.siteDir)
	if err != nil {
		return nil, fmt.Errorf("site directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site directory %s is not a directory", c.siteDir)
	}

	result := &Result{}
	err = filepath.WalkDir(c.siteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		result.PagesChecked++
		return c.checkPage(path, result)
	})
	if err != nil {
		return nil, err
	}

	if !result.OK() {
		slog.Warn("Link check found broken links",
			slog.Int("pages", result.PagesChecked),
			slog.Int("broken", len(result.Broken)))
	}
	return result, nil
}

func (c *Checker) checkPage(pagePath string, result *Result) error {
	links, err := ExtractLinks(pagePath, c.baseURL)
	if err != nil {
		return fmt.Errorf("%s: %w", pagePath, err)
	}

	rel, err := filepath.Rel(c.siteDir, pagePath)
	if err != nil {
		rel = pagePath
	}

	for _, link := range links {
		if !shouldVerify(link) {
			continue
		}
		result.LinksChecked++

		target, reason := c.resolve(pagePath, link.URL)
		if reason != "" {
			result.Broken = append(result.Broken, BrokenLink{
				SourcePath: rel,
				URL:        link.URL,
				Tag:        link.Tag,
				Reason:     reason,
			})
			slog.Debug("Broken internal link",
				logfields.Path(rel),
				slog.String("url", link.URL),
				slog.String("reason", reason))
			continue
		}
		_ = target
	}
	return nil
}

// resolve maps an internal link to a path in the output tree and reports why
// it is broken (empty reason means it resolves). Directory URLs resolve via
// index.html.
func (c *Checker) resolve(pagePath, linkURL string) (string, string) {
	u, err := url.Parse(linkURL)
	if err != nil {
		return "", "unparseable URL"
	}

	p := u.Path
	if p == "" {
		return "", "" // same-page anchor or query only
	}

	var target string
	if strings.HasPrefix(p, "/") {
		target = filepath.Join(c.siteDir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	} else {
		target = filepath.Join(filepath.Dir(pagePath), filepath.FromSlash(p))
	}

	// Stay inside the site tree.
	if relToRoot, err := filepath.Rel(c.siteDir, target); err != nil || strings.HasPrefix(relToRoot, "..") {
		return "", "target escapes site root"
	}

	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		idx := filepath.Join(target, "index.html")
		if _, err := os.Stat(idx); err != nil {
			return "", "directory has no index.html"
		}
		return idx, ""
	case err == nil:
		return target, ""
	case strings.HasSuffix(p, "/"):
		return "", "missing page"
	default:
		return "", "missing file"
	}
}
