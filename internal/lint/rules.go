package lint

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/IQDevs/blog/internal/frontmatter"
)

// FilenameRule validates that post filenames follow the dated convention
// YYYY-MM-DD-Title.markdown.
type FilenameRule struct{}

// Name returns the rule identifier.
func (r *FilenameRule) Name() string {
	return "post-filename"
}

// AppliesTo returns true for markdown post files.
func (r *FilenameRule) AppliesTo(filePath string) bool {
	return IsPostFile(filePath)
}

var filenameShape = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.(markdown|md)$`)

// Check validates the filename convention.
func (r *FilenameRule) Check(filePath string) ([]Issue, error) {
	filename := filepath.Base(filePath)
	var issues []Issue

	m := filenameShape.FindStringSubmatch(filename)
	if m == nil {
		suggested := SuggestFilename(filePath)
		issues = append(issues, Issue{
			FilePath: filePath,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Filename does not follow the YYYY-MM-DD-Title.markdown convention",
			Explanation: `Post filenames must start with the publication date followed by the title:

  2017-03-20-Golang-Deployed.markdown

The date prefix determines the post URL (/2017/03/20/golang-deployed/).`,
			Fix: "Rename to: " + suggested,
		})
		return issues, nil
	}

	if _, err := time.Parse("2006-01-02", m[1]); err != nil {
		issues = append(issues, Issue{
			FilePath:    filePath,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Filename date %q is not a valid calendar date", m[1]),
			Explanation: "The YYYY-MM-DD prefix must be a real date; it becomes the post URL.",
			Fix:         "Correct the date prefix",
		})
	}

	title := m[2]
	if strings.Contains(title, " ") {
		suggested := m[1] + "-" + strings.ReplaceAll(title, " ", "-") + "." + m[3]
		issues = append(issues, Issue{
			FilePath: filePath,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Filename contains spaces",
			Explanation: `Spaces in filenames create %20-encoded URLs and break cross-references.

Current:   ` + filename + `
Suggested: ` + suggested,
			Fix: "Rename using hyphens: " + suggested,
		})
	}

	if ext := m[3]; ext != strings.ToLower(ext) {
		issues = append(issues, Issue{
			FilePath: filePath,
			Severity: SeverityWarning,
			Rule:     r.Name(),
			Message:  "File extension is not lowercase",
			Fix:      "Rename with a lowercase ." + strings.ToLower(ext) + " extension",
		})
	}

	return issues, nil
}

// SuggestFilename proposes a convention-following filename for filePath. The
// date prefix comes from the front-matter date when one parses, otherwise
// today. The title part keeps its capitalization but swaps spaces for hyphens.
func SuggestFilename(filePath string) string {
	filename := filepath.Base(filePath)
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".markdown" && ext != ".md" {
		ext = ".markdown"
	}
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	// Strip any malformed leading date-ish prefix so it is not doubled.
	name = regexp.MustCompile(`^\d{1,4}[-_]\d{1,2}[-_]\d{1,2}[-_]?`).ReplaceAllString(name, "")

	date := fileDateHint(filePath)
	name = strings.Trim(strings.ReplaceAll(name, " ", "-"), "-_")
	if name == "" {
		name = "untitled"
	}
	return date.Format("2006-01-02") + "-" + name + ext
}

// fileDateHint extracts a date for filename suggestions from front matter,
// falling back to today.
func fileDateHint(filePath string) time.Time {
	fields, err := readFrontMatterFields(filePath)
	if err == nil {
		if raw, ok := fields["date"]; ok && raw != nil {
			if t, err := parseDateValue(raw); err == nil {
				return t
			}
		}
	}
	return time.Now()
}

// readFrontMatterFields reads and parses a file's front-matter block.
func readFrontMatterFields(filePath string) (map[string]any, error) {
	content, err := readFile(filePath)
	if err != nil {
		return nil, err
	}
	meta, _, had, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, err
	}
	if !had {
		return nil, fmt.Errorf("no front matter")
	}
	return frontmatter.ParseMap(meta)
}
