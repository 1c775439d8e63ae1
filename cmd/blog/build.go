package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/history"
	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
	"github.com/IQDevs/blog/internal/site"
)

func runBuild(ctx context.Context, cfg *config.Config, outputOverride string) error {
	outputDir := cfg.Output.Directory
	if outputOverride != "" {
		outputDir = outputOverride
	}

	report, err := buildSite(ctx, cfg, outputDir, metrics.NoopRecorder{})
	recordRun(cfg, report, "manual", "", err)
	return err
}

// buildSite runs one site build and logs per-stage timings at debug level.
func buildSite(ctx context.Context, cfg *config.Config, outputDir string, rec metrics.Recorder) (*site.Report, error) {
	gen := site.NewGenerator(cfg, outputDir).WithRecorder(rec)
	report, err := gen.Build(ctx)
	if report != nil {
		for stage, d := range report.StageDurations {
			slog.Debug("Stage finished",
				logfields.Stage(string(stage)),
				logfields.DurationMS(float64(d.Milliseconds())),
				slog.String("result", string(report.StageResults[stage])))
		}
		for _, issue := range report.Issues {
			slog.Warn("Build issue", logfields.Stage(string(issue.Stage)), slog.String("message", issue.Message))
		}
	}
	return report, err
}

// recordRun appends a build record to the history database. History failures
// are logged and swallowed so they never fail the run itself.
func recordRun(cfg *config.Config, report *site.Report, trigger, commit string, runErr error) {
	if report == nil {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("Failed to open history database", logfields.Path(cfg.History.Path), logfields.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	rec := history.Record{
		BuildID:   report.BuildID,
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
		Posts:     report.PostsRendered,
		Pages:     report.PagesWritten,
		Outcome:   string(report.Outcome),
		Trigger:   trigger,
		Commit:    commit,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Append(ctx, rec); err != nil {
		slog.Warn("Failed to append history record", logfields.Error(err))
	}
}
