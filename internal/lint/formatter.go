package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, path string) error
}

// NewFormatter creates the appropriate formatter based on format string.
// Quiet formatters omit non-error issues from the listing; counts and the
// final message still cover everything found.
func NewFormatter(format string, quiet bool) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{Quiet: quiet}
	default:
		return &TextFormatter{Quiet: quiet}
	}
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	Quiet bool
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, path string) error {
	if _, err := fmt.Fprintf(w, "Linting posts in: %s\n", path); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, issue := range result.Issues {
		if f.Quiet && issue.Severity != SeverityError {
			continue
		}
		if err := f.formatIssue(w, issue); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n  %d files scanned\n", result.FilesTotal); err != nil {
		return err
	}

	if n := result.ErrorCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s (blocks publish)\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.WarningCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s (should fix)\n", n, pluralize(n)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return f.printFinalMessage(w, result)
}

func (f *TextFormatter) printFinalMessage(w io.Writer, result *Result) error {
	switch {
	case result.HasErrors():
		_, err := fmt.Fprintln(w, "✗ Posts have errors that block publishing.\n  Run: blog lint --fix")
		return err
	case result.HasWarnings():
		_, err := fmt.Fprintln(w, "⚠ Posts have warnings. Consider fixing before publishing.\n  To auto-fix: blog lint --fix")
		return err
	default:
		_, err := fmt.Fprintln(w, "✨ All posts pass linting!")
		return err
	}
}

func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) error {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", icon, issue.FilePath); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %s: %s\n", issue.Severity, issue.Message); err != nil {
		return err
	}

	if issue.Explanation != "" {
		for _, line := range strings.Split(strings.TrimSpace(issue.Explanation), "\n") {
			if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
				return err
			}
		}
	}

	if issue.Fix != "" {
		if _, err := fmt.Fprintf(w, "\n  Fix: %s\n", issue.Fix); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	Quiet bool
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Path         string      `json:"path"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath    string `json:"file_path"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
	Line        int    `json:"line,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, path string) error {
	output := JSONOutput{
		Path:         path,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Issues:       []JSONIssue{},
	}

	for _, issue := range result.Issues {
		if f.Quiet && issue.Severity != SeverityError {
			continue
		}
		output.Issues = append(output.Issues, JSONIssue{
			FilePath:    issue.FilePath,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
			Line:        issue.Line,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
