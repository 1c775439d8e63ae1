// Package lint validates post files against the content conventions: the
// dated filename format and the required front-matter fields.
package lint

import (
	"path/filepath"
	"strings"
)

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that should be fixed but don't block builds.
	SeverityWarning
	// SeverityError indicates issues that will prevent the site build from succeeding.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single linting problem found in a file.
type Issue struct {
	FilePath    string   // Path to the offending file
	Severity    Severity // Issue severity level
	Rule        string   // Rule identifier (e.g., "post-filename")
	Message     string   // Brief description of the issue
	Explanation string   // Detailed explanation with context
	Fix         string   // Suggested fix to resolve
	Line        int      // Line number (0 if file-level issue)
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			count++
		}
	}
	return count
}

// Rule defines a linting rule applied to post files.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check validates a file and returns any issues found.
	Check(filePath string) ([]Issue, error)

	// AppliesTo returns true if this rule should be checked for the given file.
	AppliesTo(filePath string) bool
}

// Config contains configuration for the linter.
type Config struct {
	// Quiet suppresses non-error issues in formatted output. The lint
	// result itself stays complete so exit codes still reflect warnings.
	Quiet bool

	// Format specifies output format (text, json).
	Format string
}

// IsPostFile returns true if the file is a markdown post.
func IsPostFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
