package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/frontmatter"
	"github.com/IQDevs/blog/internal/logfields"
)

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", logfields.Path(configPath), slog.Bool("force", force))
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", configPath)
	return nil
}

func runNew(cfg *config.Config, title, author string, categories []string, draft bool) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("post title must not be empty")
	}
	if author == "" {
		author = cfg.Site.Author
	}
	if categories == nil {
		categories = []string{}
	}

	now := time.Now()
	name := fmt.Sprintf("%s-%s.markdown", now.Format("2006-01-02"), strings.Join(strings.Fields(title), "-"))
	path := filepath.Join(cfg.Content.PostsDir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("post already exists: %s", path)
	}

	fields := map[string]any{
		"layout":     "post",
		"title":      title,
		"date":       now.Format("2006-01-02 15:04:05 -0700"),
		"categories": categories,
		"author":     author,
		"uid":        uuid.NewString(),
	}
	if draft {
		fields["draft"] = true
	}

	style := frontmatter.Style{Newline: "\n", HasTrailingNewline: true}
	meta, err := frontmatter.Serialize(fields, style)
	if err != nil {
		return fmt.Errorf("serialize front matter: %w", err)
	}
	content := frontmatter.Join(meta, []byte("\nWrite your post here.\n"), true, style)

	if err := os.MkdirAll(cfg.Content.PostsDir, 0o755); err != nil {
		return fmt.Errorf("create posts directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write post: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}
