package lint

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Linter runs all rules over the posts directory.
type Linter struct {
	cfg   *Config
	rules []Rule
}

// NewLinter creates a new linter with the given configuration.
func NewLinter(cfg *Config) *Linter {
	if cfg == nil {
		cfg = &Config{Format: "text"}
	}

	return &Linter{
		cfg: cfg,
		rules: []Rule{
			&FilenameRule{},
			&FrontMatterRule{},
		},
	}
}

// LintPath lints a single post file or every post in a directory.
func (l *Linter) LintPath(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	result := &Result{Issues: []Issue{}}

	if info.IsDir() {
		err = l.lintDirectory(path, result)
	} else {
		err = l.lintFile(path, result)
		result.FilesTotal = 1
	}

	return result, err
}

// LintFiles lints a specific list of files (useful for git hooks).
func (l *Linter) LintFiles(files []string) (*Result, error) {
	result := &Result{Issues: []Issue{}}

	for _, file := range files {
		if !IsPostFile(file) {
			continue
		}
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}

		result.FilesTotal++
		if err := l.lintFile(file, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (l *Linter) lintDirectory(dirPath string, result *Result) error {
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !IsPostFile(path) {
			return nil
		}

		result.FilesTotal++
		return l.lintFile(path, result)
	})
}

func (l *Linter) lintFile(filePath string, result *Result) error {
	for _, rule := range l.rules {
		if !rule.AppliesTo(filePath) {
			continue
		}

		issues, err := rule.Check(filePath)
		if err != nil {
			return err
		}

		// The result stays complete; quiet mode is display-only so exit
		// codes still reflect warnings.
		result.Issues = append(result.Issues, issues...)
	}

	return nil
}
