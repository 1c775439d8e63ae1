// Package post defines the blog post model: filename conventions, typed
// front matter, and the loader that turns a posts directory into a sorted
// collection.
package post

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Posts are named YYYY-MM-DD-Title.markdown; the date prefix is the canonical
// publication day, the remainder the title slug.
var filenamePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)\.(markdown|md)$`)

// ErrBadFilename indicates a file that does not follow the post naming convention.
var ErrBadFilename = errors.New("filename does not match YYYY-MM-DD-Title.markdown")

// FrontMatter is the typed YAML header every post carries.
//
// Required fields: layout, title, date, categories, author. Everything else
// is optional authoring metadata.
type FrontMatter struct {
	Layout     string     `yaml:"layout"`
	Title      string     `yaml:"title"`
	Date       string     `yaml:"date"`
	Categories StringList `yaml:"categories"`
	Author     string     `yaml:"author"`
	Tags       StringList `yaml:"tags,omitempty"`
	UID        string     `yaml:"uid,omitempty"`
	Draft      bool       `yaml:"draft,omitempty"`
	Summary    string     `yaml:"summary,omitempty"`
}

// RequiredFields lists the front-matter keys every post must carry.
var RequiredFields = []string{"layout", "title", "date", "categories", "author"}

// StringList accepts both YAML sequences and Jekyll-style space-separated
// scalars ("categories: go ci").
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = strings.Fields(value.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*s = items
		return nil
	default:
		return fmt.Errorf("categories/tags must be a string or a list, got %s", value.Tag)
	}
}

// Post is a fully parsed blog post.
type Post struct {
	SourcePath string // absolute path to the markdown file
	Filename   string // base name
	Slug       string // URL slug derived from the filename title part
	Date       time.Time
	FileDate   time.Time // date encoded in the filename
	Meta       FrontMatter
	Body       []byte // markdown body without the front-matter block
}

// ParseFilename extracts the date and raw title part from a post filename.
func ParseFilename(name string) (date time.Time, title string, err error) {
	m := filenamePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return time.Time{}, "", fmt.Errorf("%w: %s", ErrBadFilename, filepath.Base(name))
	}
	date, err = time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %s: %v", ErrBadFilename, filepath.Base(name), err)
	}
	return date, m[4], nil
}

// dateLayouts are accepted front-matter date formats, most specific first.
// Jekyll-style dates carry an optional time of day and zone offset.
var dateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02",
}

// ParseDate parses a front-matter date string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Permalink returns the site-relative directory URL of the post, e.g.
// /2017/03/20/golang-deployed/.
func (p *Post) Permalink() string {
	return fmt.Sprintf("/%04d/%02d/%02d/%s/", p.Date.Year(), p.Date.Month(), p.Date.Day(), p.Slug)
}

// OutputPath returns the relative path of the rendered page inside the site
// output directory.
func (p *Post) OutputPath() string {
	return filepath.Join(
		fmt.Sprintf("%04d", p.Date.Year()),
		fmt.Sprintf("%02d", int(p.Date.Month())),
		fmt.Sprintf("%02d", p.Date.Day()),
		p.Slug, "index.html")
}

// DateMismatch reports whether the front-matter date falls on a different
// calendar day than the filename date.
func (p *Post) DateMismatch() bool {
	y1, m1, d1 := p.Date.Date()
	y2, m2, d2 := p.FileDate.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}
