package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/IQDevs/blog/internal/post"
)

//go:embed layouts/*.html.tmpl
var builtinLayouts embed.FS

// defaultStylesheet backs the /css/main.css link in the built-in base layout.
//
//go:embed assets/main.css
var defaultStylesheet []byte

// pageNames are the layout files expected next to base.html.tmpl.
var pageNames = []string{"post", "index", "archive", "list", "terms"}

var templateFuncs = template.FuncMap{
	"slugify": post.Slugify,
}

// Templates holds one executable template per page kind, each composed of
// the base layout plus the page's content block.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses the embedded layouts, then overlays any same-named
// files found in overrideDir (empty means built-ins only).
func LoadTemplates(overrideDir string) (*Templates, error) {
	t := &Templates{pages: map[string]*template.Template{}}
	for _, name := range pageNames {
		tpl := template.New(name).Funcs(templateFuncs)

		tpl, err := tpl.ParseFS(builtinLayouts, "layouts/base.html.tmpl", "layouts/"+name+".html.tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse built-in layout %s: %w", name, err)
		}

		if overrideDir != "" {
			for _, f := range []string{"base.html.tmpl", name + ".html.tmpl"} {
				p := filepath.Join(overrideDir, f)
				if _, err := os.Stat(p); err != nil {
					continue
				}
				if tpl, err = tpl.ParseFiles(p); err != nil {
					return nil, fmt.Errorf("parse layout override %s: %w", p, err)
				}
			}
		}

		t.pages[name] = tpl
	}
	return t, nil
}

// Execute renders the named page template into w-compatible bytes.
func (t *Templates) Execute(name string, data any) ([]byte, error) {
	tpl, ok := t.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page template %q", name)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
