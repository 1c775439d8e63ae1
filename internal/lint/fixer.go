package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/IQDevs/blog/internal/frontmatter"
	"github.com/IQDevs/blog/internal/post"
)

// Fixer performs automatic fixes for linting issues: renaming files into the
// dated convention and filling missing front-matter fields.
type Fixer struct {
	linter *Linter
	dryRun bool
}

// NewFixer creates a new fixer wrapping the given linter.
func NewFixer(linter *Linter, dryRun bool) *Fixer {
	return &Fixer{linter: linter, dryRun: dryRun}
}

// FixResult contains the results of a fix operation.
type FixResult struct {
	FilesRenamed []RenameOperation
	FieldsFilled []FieldFill
	Errors       []error
}

// RenameOperation represents a file rename.
type RenameOperation struct {
	OldPath string
	NewPath string
	Success bool
	Error   error
}

// FieldFill records a front-matter field written into a file.
type FieldFill struct {
	FilePath string
	Field    string
	Value    string
}

// Fix lints path and applies every automatic fix it knows: filename renames,
// uid insertion, and defaults for missing layout/date fields. Title, author,
// and categories carry meaning only the author knows, so they are never
// invented.
func (f *Fixer) Fix(path string) (*FixResult, error) {
	result, err := f.linter.LintPath(path)
	if err != nil {
		return nil, fmt.Errorf("lint before fix: %w", err)
	}

	fixResult := &FixResult{}

	byFile := map[string][]Issue{}
	for _, issue := range result.Issues {
		byFile[issue.FilePath] = append(byFile[issue.FilePath], issue)
	}

	for filePath, issues := range byFile {
		current := filePath
		if needsRename(issues) {
			op := f.renameFile(current)
			fixResult.FilesRenamed = append(fixResult.FilesRenamed, op)
			if op.Error != nil {
				fixResult.Errors = append(fixResult.Errors, op.Error)
				continue
			}
			if op.Success && !f.dryRun {
				current = op.NewPath
			}
		}
		if err := f.fillFields(current, issues, fixResult); err != nil {
			fixResult.Errors = append(fixResult.Errors, fmt.Errorf("%s: %w", current, err))
		}
	}

	return fixResult, nil
}

func needsRename(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Rule == (&FilenameRule{}).Name() && issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (f *Fixer) renameFile(oldPath string) RenameOperation {
	newName := SuggestFilename(oldPath)
	newPath := filepath.Join(filepath.Dir(oldPath), newName)

	op := RenameOperation{OldPath: oldPath, NewPath: newPath}
	if newPath == oldPath {
		return op
	}
	if _, err := os.Stat(newPath); err == nil {
		op.Error = fmt.Errorf("rename target %s already exists", newPath)
		return op
	}
	if f.dryRun {
		op.Success = true
		return op
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		op.Error = err
		return op
	}
	op.Success = true
	return op
}

// fillFields writes defaults for fixable missing front-matter fields.
func (f *Fixer) fillFields(filePath string, issues []Issue, fixResult *FixResult) error {
	wantUID := false
	wantLayout := false
	wantDate := false
	for _, issue := range issues {
		if issue.Rule != (&FrontMatterRule{}).Name() {
			continue
		}
		switch {
		case issue.Message == "Missing 'uid' field in front matter":
			wantUID = true
		case issue.Message == `Missing required front-matter field "layout"`:
			wantLayout = true
		case issue.Message == `Missing required front-matter field "date"`:
			wantDate = true
		}
	}
	if !wantUID && !wantLayout && !wantDate {
		return nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	meta, body, had, style, err := frontmatter.Split(content)
	if err != nil || !had {
		return nil // malformed block needs a human
	}
	fields, err := frontmatter.ParseMap(meta)
	if err != nil {
		return nil
	}

	changed := false
	if wantUID {
		fields["uid"] = uuid.NewString()
		fixResult.FieldsFilled = append(fixResult.FieldsFilled, FieldFill{filePath, "uid", fields["uid"].(string)})
		changed = true
	}
	if wantLayout {
		fields["layout"] = "post"
		fixResult.FieldsFilled = append(fixResult.FieldsFilled, FieldFill{filePath, "layout", "post"})
		changed = true
	}
	if wantDate {
		date := fixDateFor(filePath)
		fields["date"] = date
		fixResult.FieldsFilled = append(fixResult.FieldsFilled, FieldFill{filePath, "date", date})
		changed = true
	}
	if !changed || f.dryRun {
		return nil
	}

	newMeta, err := frontmatter.Serialize(fields, style)
	if err != nil {
		return err
	}
	out := frontmatter.Join(newMeta, body, true, style)

	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, out, info.Mode().Perm())
}

// fixDateFor derives a date value from the filename, falling back to today.
func fixDateFor(filePath string) string {
	if d, _, err := post.ParseFilename(filePath); err == nil {
		return d.Format("2006-01-02")
	}
	return time.Now().Format("2006-01-02")
}
