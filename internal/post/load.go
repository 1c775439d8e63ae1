package post

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/IQDevs/blog/internal/frontmatter"
	"github.com/IQDevs/blog/internal/logfields"
)

// Loader reads posts from a directory.
type Loader struct {
	Dir           string
	IncludeDrafts bool
}

// NewLoader creates a loader for the given posts directory.
func NewLoader(dir string, includeDrafts bool) *Loader {
	return &Loader{Dir: dir, IncludeDrafts: includeDrafts}
}

// Load walks the posts directory, parses every markdown file, and returns
// posts sorted newest-first. Files with malformed names or front matter fail
// the load; lint exists to diagnose them individually.
func (l *Loader) Load() ([]*Post, error) {
	info, err := os.Stat(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("posts directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("posts directory %s is not a directory", l.Dir)
	}

	var posts []*Post
	err = filepath.WalkDir(l.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !isMarkdown(d.Name()) {
			return nil
		}

		p, err := ParseFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if p.Meta.Draft && !l.IncludeDrafts {
			slog.Debug("Skipping draft post", logfields.Post(p.Filename))
			return nil
		}
		if p.DateMismatch() {
			slog.Warn("Post date does not match filename date",
				logfields.Post(p.Filename),
				slog.Time("front_matter", p.Date),
				slog.Time("filename", p.FileDate))
		}
		posts = append(posts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

// ParseFile reads and parses a single post file.
func ParseFile(path string) (*Post, error) {
	fileDate, titlePart, err := ParseFilename(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read post: %w", err)
	}

	meta, body, had, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}
	if !had {
		return nil, fmt.Errorf("missing front matter block")
	}

	var fm FrontMatter
	if err := frontmatter.Decode(meta, &fm); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}

	date := fileDate
	if fm.Date != "" {
		parsed, err := ParseDate(fm.Date)
		if err != nil {
			return nil, fmt.Errorf("front-matter date: %w", err)
		}
		date = parsed
	}

	p := &Post{
		SourcePath: path,
		Filename:   filepath.Base(path),
		Slug:       Slugify(titlePart),
		Date:       date,
		FileDate:   fileDate,
		Meta:       fm,
		Body:       body,
	}
	return p, nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// Categories returns the distinct categories across posts, sorted.
func Categories(posts []*Post) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range posts {
		for _, c := range p.Meta.Categories {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Authors returns the distinct authors across posts, sorted.
func Authors(posts []*Post) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range posts {
		a := strings.TrimSpace(p.Meta.Author)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; !ok {
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}
