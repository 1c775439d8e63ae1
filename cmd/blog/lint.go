package main

import (
	"fmt"
	"os"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/lint"
)

// Lint exit codes: 0 clean, 1 warnings only, 2 errors.
const (
	lintExitClean    = 0
	lintExitWarnings = 1
	lintExitErrors   = 2
)

func runLint(cfg *config.Config, path string, fix, dryRun, quiet bool, format string) int {
	if path == "" {
		path = cfg.Content.PostsDir
	}

	linter := lint.NewLinter(&lint.Config{Quiet: quiet, Format: format})

	if fix {
		if code, done := applyFixes(linter, path, dryRun); done {
			return code
		}
	}

	result, err := linter.LintPath(path)
	if err != nil {
		fatal("Lint failed", err)
	}

	formatter := lint.NewFormatter(format, quiet)
	if err := formatter.Format(os.Stdout, result, path); err != nil {
		fatal("Failed to format lint output", err)
	}

	switch {
	case result.HasErrors():
		return lintExitErrors
	case result.HasWarnings():
		return lintExitWarnings
	default:
		return lintExitClean
	}
}

// applyFixes runs the fixer and reports what changed. Returns done=true with
// an exit code when fixing itself failed.
func applyFixes(linter *lint.Linter, path string, dryRun bool) (int, bool) {
	fixer := lint.NewFixer(linter, dryRun)
	fixResult, err := fixer.Fix(path)
	if err != nil {
		fatal("Fix failed", err)
	}

	prefix := "Fixed"
	if dryRun {
		prefix = "Would fix"
	}
	for _, op := range fixResult.FilesRenamed {
		switch {
		case op.Success:
			fmt.Printf("%s: renamed %s -> %s\n", prefix, op.OldPath, op.NewPath)
		case op.Error != nil:
			fmt.Printf("Could not rename %s: %s\n", op.OldPath, op.Error)
		}
	}
	for _, fill := range fixResult.FieldsFilled {
		fmt.Printf("%s: %s: filled %s: %s\n", prefix, fill.FilePath, fill.Field, fill.Value)
	}
	for _, fixErr := range fixResult.Errors {
		fmt.Printf("Fix error: %s\n", fixErr)
	}
	if len(fixResult.Errors) > 0 {
		return lintExitErrors, true
	}
	return 0, false
}
