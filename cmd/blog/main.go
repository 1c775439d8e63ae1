package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/version"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blog.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version information and exit"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new blog configuration file"`

	New struct {
		Title      string   `arg:"" help:"Post title"`
		Author     string   `short:"a" help:"Post author (defaults to site.author)"`
		Categories []string `short:"g" help:"Post categories"`
		Draft      bool     `help:"Mark the post as a draft"`
	} `cmd:"" help:"Scaffold a new post with dated filename and front matter"`

	Build struct {
		Output string `short:"o" help:"Override output directory"`
		Drafts bool   `help:"Include draft posts"`
	} `cmd:"" help:"Build the static site from posts"`

	Lint struct {
		Path   string `arg:"" optional:"" help:"Post file or directory to lint (defaults to posts dir)"`
		Fix    bool   `help:"Automatically fix fixable issues"`
		DryRun bool   `name:"dry-run" help:"Show fixes without applying them"`
		Quiet  bool   `short:"q" help:"Only report errors"`
		Format string `default:"text" enum:"text,json" help:"Output format (text, json)"`
	} `cmd:"" help:"Lint post filenames and front matter"`

	Check struct {
		Dir string `arg:"" optional:"" help:"Site directory to check (defaults to output directory)"`
	} `cmd:"" help:"Verify internal links in the built site"`

	Publish struct {
		Message   string `short:"m" help:"Override the publish commit message"`
		Branch    string `help:"Override the publish branch"`
		SkipBuild bool   `name:"skip-build" help:"Publish the existing output without rebuilding"`
	} `cmd:"" help:"Build and push the site to the publish repository"`

	Serve struct {
		Port   int  `short:"p" help:"Override preview server port"`
		Drafts bool `help:"Include draft posts"`
	} `cmd:"" help:"Serve the site locally and rebuild on changes"`

	Daemon struct{} `cmd:"" help:"Run scheduled build-and-publish cycles"`

	History struct {
		Limit int    `short:"n" default:"20" help:"Number of records to show"`
		Build string `help:"Show records for a specific build ID"`
	} `cmd:"" help:"Show recent build and publish history"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Vars{
		"version": fmt.Sprintf("blog %s (commit %s, built %s)", version.Version, version.GitCommit, version.BuildTime),
	})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch kctx.Command() {
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			fatal("Init failed", err)
		}
	case "new <title>":
		cfg := mustLoadConfig()
		if err := runNew(cfg, CLI.New.Title, CLI.New.Author, CLI.New.Categories, CLI.New.Draft); err != nil {
			fatal("New post failed", err)
		}
	case "build":
		cfg := mustLoadConfig()
		if CLI.Build.Drafts {
			cfg.Content.Drafts = true
		}
		if err := runBuild(ctx, cfg, CLI.Build.Output); err != nil {
			fatal("Build failed", err)
		}
	case "lint", "lint <path>":
		cfg := mustLoadConfig()
		code := runLint(cfg, CLI.Lint.Path, CLI.Lint.Fix, CLI.Lint.DryRun, CLI.Lint.Quiet, CLI.Lint.Format)
		cancel()
		os.Exit(code)
	case "check", "check <dir>":
		cfg := mustLoadConfig()
		if err := runCheck(cfg, CLI.Check.Dir); err != nil {
			fatal("Check failed", err)
		}
	case "publish":
		cfg := mustLoadConfig()
		if CLI.Publish.Branch != "" {
			cfg.Publish.Branch = CLI.Publish.Branch
		}
		if err := runPublish(ctx, cfg, CLI.Publish.Message, CLI.Publish.SkipBuild); err != nil {
			fatal("Publish failed", err)
		}
	case "serve":
		cfg := mustLoadConfig()
		if CLI.Serve.Drafts {
			cfg.Content.Drafts = true
		}
		if err := runServe(ctx, cfg, CLI.Serve.Port); err != nil {
			fatal("Serve failed", err)
		}
	case "daemon":
		cfg := mustLoadConfig()
		if err := runDaemon(ctx, cfg); err != nil {
			fatal("Daemon failed", err)
		}
	case "history":
		cfg := mustLoadConfig()
		if err := runHistory(ctx, cfg, CLI.History.Limit, CLI.History.Build); err != nil {
			fatal("History failed", err)
		}
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	return cfg
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
