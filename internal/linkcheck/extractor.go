// Package linkcheck verifies that internal links and asset references in a
// rendered site resolve to files in the output tree.
package linkcheck

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link represents a reference extracted from HTML content.
type Link struct {
	URL        string // The URL or path
	Text       string // Link text or alt text
	Tag        string // HTML tag (a, img, script, link)
	Attribute  string // Attribute containing the link (href, src)
	IsInternal bool   // True if the link targets this site
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string, baseURL string) ([]*Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", htmlPath, err)
	}
	defer func() {
		_ = file.Close()
	}()

	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all links from an HTML reader.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var links []*Link
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			extractElementLinks(n, &links, base)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return links, nil
}

func extractElementLinks(n *html.Node, links *[]*Link, base *url.URL) {
	switch n.Data {
	case "a":
		if href := getAttr(n, "href"); href != "" {
			*links = append(*links, &Link{
				URL:        href,
				Text:       extractText(n),
				Tag:        "a",
				Attribute:  "href",
				IsInternal: isInternalLink(href, base),
			})
		}
	case "img":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, &Link{
				URL:        src,
				Text:       getAttr(n, "alt"),
				Tag:        "img",
				Attribute:  "src",
				IsInternal: isInternalLink(src, base),
			})
		}
	case "script":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, &Link{
				URL:        src,
				Tag:        "script",
				Attribute:  "src",
				IsInternal: isInternalLink(src, base),
			})
		}
	case "link":
		if href := getAttr(n, "href"); href != "" {
			*links = append(*links, &Link{
				URL:        href,
				Text:       getAttr(n, "rel"),
				Tag:        "link",
				Attribute:  "href",
				IsInternal: isInternalLink(href, base),
			})
		}
	}
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}

func isInternalLink(linkURL string, base *url.URL) bool {
	if strings.HasPrefix(linkURL, "#") {
		return true
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	if u.Scheme == "mailto" || u.Scheme == "tel" || u.Scheme == "javascript" || u.Scheme == "data" {
		return false
	}
	if u.Scheme == "" || u.Host == "" {
		return true
	}
	return base != nil && u.Host == base.Host
}

// shouldVerify reports whether a link warrants a filesystem check. Anchors
// and non-navigational schemes are skipped.
func shouldVerify(link *Link) bool {
	if link.URL == "" || strings.HasPrefix(link.URL, "#") {
		return false
	}
	return link.IsInternal
}
