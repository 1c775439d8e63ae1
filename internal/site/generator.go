// Package site turns a posts directory into a rendered static site through a
// staged pipeline: prepare staging, load posts, render, indexes, feed, static
// assets, atomic swap into the output directory.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
	"github.com/IQDevs/blog/internal/post"
)

// Generator orchestrates the build pipeline.
type Generator struct {
	cfg       *config.Config
	outputDir string
	recorder  metrics.Recorder
	md        goldmark.Markdown
}

// NewGenerator creates a generator writing into outputDir.
func NewGenerator(cfg *config.Config, outputDir string) *Generator {
	return &Generator{
		cfg:       cfg,
		outputDir: outputDir,
		recorder:  metrics.NoopRecorder{},
		md:        newMarkdown(),
	}
}

// WithRecorder injects a metrics recorder (fluent helper).
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// BuildState carries intermediate results between stages.
type BuildState struct {
	Cfg        *config.Config
	StagingDir string
	OutputDir  string
	Posts      []*post.Post
	Pages      []*PostPage // parallel to Posts
	Tpls       *Templates
	Report     *Report
}

// Stage is a single pipeline step.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

func (g *Generator) stages() []StageDef {
	return []StageDef{
		{StagePrepareStaging, g.stagePrepareStaging},
		{StageLoadPosts, g.stageLoadPosts},
		{StageRenderPosts, g.stageRenderPosts},
		{StageIndexes, g.stageIndexes},
		{StageFeed, g.stageFeed},
		{StageCopyStatic, g.stageCopyStatic},
		{StageSwapOutput, g.stageSwapOutput},
	}
}

// Build runs the full pipeline and returns the build report. The report is
// non-nil even on failure so callers can persist partial timings.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	bs := &BuildState{
		Cfg:       g.cfg,
		OutputDir: g.outputDir,
		Report:    newReport(uuid.NewString()),
	}

	slog.Info("Starting site build", logfields.BuildID(bs.Report.BuildID), logfields.Path(g.outputDir))

	err := g.runStages(ctx, bs)
	if err != nil {
		if ctx.Err() != nil {
			bs.Report.Outcome = OutcomeCanceled
		} else {
			bs.Report.Outcome = OutcomeFailed
		}
	}
	bs.Report.finish(g.recorder)

	// Staging is removed whenever it still exists: on failure, and after the
	// copy fallback in the swap stage. A successful rename clears it.
	if bs.StagingDir != "" {
		if rmErr := os.RemoveAll(bs.StagingDir); rmErr != nil {
			slog.Warn("Failed to remove staging directory", logfields.Path(bs.StagingDir), logfields.Error(rmErr))
		}
	}

	if err != nil {
		return bs.Report, err
	}

	slog.Info("Site build finished",
		logfields.BuildID(bs.Report.BuildID),
		logfields.Outcome(string(bs.Report.Outcome)),
		slog.Int("posts", bs.Report.PostsRendered),
		slog.Int("pages", bs.Report.PagesWritten),
		logfields.DurationMS(float64(bs.Report.Duration.Milliseconds())))
	return bs.Report, nil
}

// runStages executes stages in order, recording timing and stopping on the
// first failure or cancellation.
func (g *Generator) runStages(ctx context.Context, bs *BuildState) error {
	for _, st := range g.stages() {
		select {
		case <-ctx.Done():
			bs.Report.recordStage(st.Name, StageResultCanceled, 0, g.recorder)
			return fmt.Errorf("build canceled before stage %s: %w", st.Name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		switch {
		case err != nil && ctx.Err() != nil:
			bs.Report.recordStage(st.Name, StageResultCanceled, dur, g.recorder)
			return fmt.Errorf("stage %s canceled: %w", st.Name, err)
		case err != nil:
			bs.Report.recordStage(st.Name, StageResultFatal, dur, g.recorder)
			return fmt.Errorf("stage %s: %w", st.Name, err)
		default:
			res := StageResultSuccess
			if stageHasIssues(bs.Report, st.Name) {
				res = StageResultWarning
			}
			bs.Report.recordStage(st.Name, res, dur, g.recorder)
		}
		slog.Debug("Stage complete", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}

func stageHasIssues(r *Report, stage StageName) bool {
	for _, is := range r.Issues {
		if is.Stage == stage {
			return true
		}
	}
	return false
}

func (g *Generator) stagePrepareStaging(_ context.Context, bs *BuildState) error {
	parent := filepath.Dir(bs.OutputDir)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return fmt.Errorf("create output parent: %w", err)
	}
	// Staging lives next to the output directory so the final swap is a
	// same-filesystem rename.
	staging, err := os.MkdirTemp(parent, ".staging-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	bs.StagingDir = staging
	return nil
}

func (g *Generator) stageLoadPosts(_ context.Context, bs *BuildState) error {
	loader := post.NewLoader(bs.Cfg.Content.PostsDir, bs.Cfg.Content.Drafts)
	posts, err := loader.Load()
	if err != nil {
		return err
	}
	for _, p := range posts {
		if p.DateMismatch() {
			bs.Report.AddIssue(StageLoadPosts, fmt.Sprintf("%s: front-matter date %s does not match filename date %s",
				p.Filename, p.Date.Format("2006-01-02"), p.FileDate.Format("2006-01-02")))
		}
	}
	bs.Posts = posts
	return nil
}

func (g *Generator) stageRenderPosts(ctx context.Context, bs *BuildState) error {
	tpls, err := LoadTemplates(bs.Cfg.Content.Layouts)
	if err != nil {
		return err
	}
	bs.Tpls = tpls

	for _, p := range bs.Posts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		page, err := postPage(g.md, p)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Filename, err)
		}
		bs.Pages = append(bs.Pages, page)

		out, err := tpls.Execute("post", g.pageData(page.Title, &pageContent{Post: page}))
		if err != nil {
			return fmt.Errorf("%s: %w", p.Filename, err)
		}
		if err := writeSiteFile(bs.StagingDir, p.OutputPath(), out); err != nil {
			return err
		}
		bs.Report.PagesWritten++
	}
	bs.Report.PostsRendered = len(bs.Posts)
	return nil
}

func (g *Generator) stageCopyStatic(_ context.Context, bs *BuildState) error {
	// Built-in assets go first so a site's static dir can override them.
	if err := writeSiteFile(bs.StagingDir, filepath.Join("css", "main.css"), defaultStylesheet); err != nil {
		return err
	}

	dir := bs.Cfg.Content.StaticDir
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		bs.Report.AddIssue(StageCopyStatic, fmt.Sprintf("static directory %s does not exist", dir))
		return nil
	}
	return copyTree(dir, bs.StagingDir)
}

func (g *Generator) stageSwapOutput(_ context.Context, bs *BuildState) error {
	if bs.Cfg.Output.Clean {
		if err := os.RemoveAll(bs.OutputDir); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	if err := os.Rename(bs.StagingDir, bs.OutputDir); err != nil {
		// Rename can fail when the output exists (clean disabled) or crosses
		// filesystems; fall back to a tree copy. The staging dir stays set so
		// the build epilogue removes the copy source.
		if copyErr := copyTree(bs.StagingDir, bs.OutputDir); copyErr != nil {
			return fmt.Errorf("swap output: %w", copyErr)
		}
		return nil
	}
	bs.StagingDir = ""
	return nil
}

// writeSiteFile writes content at relPath under root, creating directories.
func writeSiteFile(root, relPath string, content []byte) error {
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	return nil
}

// copyTree recursively copies src into dst, preserving file modes.
func copyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := os.WriteFile(dstPath, data, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}
