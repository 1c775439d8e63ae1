package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
	"github.com/IQDevs/blog/internal/publish"
	"github.com/IQDevs/blog/internal/site"
)

func runPublish(ctx context.Context, cfg *config.Config, message string, skipBuild bool) error {
	publisher := publish.NewPublisher(cfg)
	if message != "" {
		publisher.WithMessage(message)
	}

	// The gate is not a failure: off-branch checkouts log and skip the push.
	if err := publisher.CheckGate(); err != nil {
		if errors.Is(err, publish.ErrBranchGate) {
			slog.Info("Not on the publish source branch, skipping publish",
				logfields.Branch(cfg.Publish.SourceBranch))
			return nil
		}
		return err
	}

	var report *site.Report
	if !skipBuild {
		var err error
		report, err = buildSite(ctx, cfg, cfg.Output.Directory, metrics.NoopRecorder{})
		if err != nil {
			recordRun(cfg, report, "manual", "", err)
			return err
		}
	}

	result, err := publisher.Publish(ctx, cfg.Output.Directory)
	switch {
	case errors.Is(err, publish.ErrNoChanges):
		slog.Info("Publish repository already up to date")
		recordRun(cfg, report, "manual", "", nil)
		return nil
	case err != nil:
		recordRun(cfg, report, "manual", "", err)
		return err
	}

	slog.Info("Site published",
		logfields.Commit(result.Commit),
		logfields.Branch(result.Branch),
		slog.Int("attempts", result.Attempts),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	recordRun(cfg, report, "manual", result.Commit, nil)
	return nil
}
