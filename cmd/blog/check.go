package main

import (
	"fmt"
	"os"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/linkcheck"
)

func runCheck(cfg *config.Config, dirOverride string) error {
	siteDir := cfg.Output.Directory
	if dirOverride != "" {
		siteDir = dirOverride
	}
	if st, err := os.Stat(siteDir); err != nil || !st.IsDir() {
		return fmt.Errorf("site directory %s not found, run `blog build` first", siteDir)
	}

	checker := linkcheck.NewChecker(siteDir, cfg.Site.BaseURL)
	result, err := checker.Check()
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d links across %d pages\n", result.LinksChecked, result.PagesChecked)
	if result.OK() {
		return nil
	}

	for _, broken := range result.Broken {
		fmt.Printf("  %s: %s (%s): %s\n", broken.SourcePath, broken.URL, broken.Tag, broken.Reason)
	}
	return fmt.Errorf("%d broken internal links", len(result.Broken))
}
