package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/IQDevs/blog/internal/frontmatter"
	"github.com/IQDevs/blog/internal/post"
)

// FrontMatterRule checks that posts carry a valid front-matter block with the
// required fields.
type FrontMatterRule struct{}

// Name returns the rule identifier.
func (r *FrontMatterRule) Name() string {
	return "post-frontmatter"
}

// AppliesTo returns true for markdown post files.
func (r *FrontMatterRule) AppliesTo(filePath string) bool {
	return IsPostFile(filePath)
}

// Check validates the front-matter block.
func (r *FrontMatterRule) Check(filePath string) ([]Issue, error) {
	content, err := readFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	meta, _, had, _, err := frontmatter.Split(content)
	if err != nil {
		return []Issue{{
			FilePath:    filePath,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Malformed front matter: %v", err),
			Explanation: "The front-matter block must be YAML enclosed in --- delimiters at the top of the file.",
			Fix:         "Close the front-matter block with a --- line",
			Line:        1,
		}}, nil
	}
	if !had {
		return []Issue{{
			FilePath: filePath,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Missing front matter",
			Explanation: `Every post needs a front-matter block:

  ---
  layout: post
  title: My Post
  date: 2017-03-20 00:00:00 +0300
  categories: golang
  author: Your Name
  ---`,
			Fix:  "Add a front-matter block with the required fields",
			Line: 1,
		}}, nil
	}

	fields, err := frontmatter.ParseMap(meta)
	if err != nil {
		return []Issue{{
			FilePath:    filePath,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Invalid front matter: %v", err),
			Explanation: "Front matter must be valid YAML between --- delimiters.",
			Fix:         "Fix YAML syntax errors in the front matter",
			Line:        1,
		}}, nil
	}

	var issues []Issue
	for _, field := range post.RequiredFields {
		raw, ok := fields[field]
		if ok && strings.TrimSpace(fmt.Sprint(raw)) != "" && raw != nil {
			continue
		}
		issues = append(issues, Issue{
			FilePath:    filePath,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Missing required front-matter field %q", field),
			Explanation: "Required fields: " + strings.Join(post.RequiredFields, ", "),
			Fix:         fmt.Sprintf("Add %q to the front matter", field),
			Line:        1,
		})
	}

	issues = append(issues, r.checkDate(filePath, fields)...)

	if _, ok := fields["uid"]; !ok {
		issues = append(issues, Issue{
			FilePath:    filePath,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     "Missing 'uid' field in front matter",
			Explanation: "A stable uid lets posts keep their identity across renames.",
			Fix:         "Add 'uid: <uuid>' to the front matter",
			Line:        1,
		})
	}

	return issues, nil
}

// checkDate validates the date field and its agreement with the filename.
func (r *FrontMatterRule) checkDate(filePath string, fields map[string]any) []Issue {
	raw, ok := fields["date"]
	if !ok || raw == nil {
		return nil // missing date reported by the required-field loop
	}

	parsed, err := parseDateValue(raw)
	if err != nil {
		return []Issue{{
			FilePath:    filePath,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Unparseable front-matter date %q", fmt.Sprint(raw)),
			Explanation: "Dates use YYYY-MM-DD with an optional time and zone offset, e.g. 2017-03-20 00:00:00 +0300.",
			Fix:         "Rewrite the date field in a supported format",
			Line:        1,
		}}
	}

	fileDate, _, err := post.ParseFilename(filepath.Base(filePath))
	if err != nil {
		return nil // filename shape reported by FilenameRule
	}

	y1, m1, d1 := parsed.Date()
	y2, m2, d2 := fileDate.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return []Issue{{
			FilePath: filePath,
			Severity: SeverityWarning,
			Rule:     r.Name(),
			Message: fmt.Sprintf("front-matter date %s does not match filename date %s",
				parsed.Format("2006-01-02"), fileDate.Format("2006-01-02")),
			Explanation: "The filename date determines the post URL; a differing front-matter date is confusing.",
			Fix:         "Align the front-matter date with the filename (or rename the file)",
			Line:        1,
		}}
	}
	return nil
}

// parseDateValue accepts the shapes YAML gives a date scalar: bare dates
// resolve to time.Time, quoted ones stay strings.
func parseDateValue(raw any) (time.Time, error) {
	if t, ok := raw.(time.Time); ok {
		return t, nil
	}
	return post.ParseDate(fmt.Sprint(raw))
}

func readFile(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}
