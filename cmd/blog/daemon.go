package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/daemon"
	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
	"github.com/IQDevs/blog/internal/publish"
)

func runDaemon(ctx context.Context, cfg *config.Config) error {
	cycle := func(ctx context.Context) error {
		report, err := buildSite(ctx, cfg, cfg.Output.Directory, metrics.NoopRecorder{})
		if err != nil {
			recordRun(cfg, report, "schedule", "", err)
			return err
		}

		result, err := publish.NewPublisher(cfg).Publish(ctx, cfg.Output.Directory)
		switch {
		case errors.Is(err, publish.ErrBranchGate):
			slog.Info("Skipping publish, not on source branch", logfields.Branch(cfg.Publish.SourceBranch))
			recordRun(cfg, report, "schedule", "", nil)
			return nil
		case errors.Is(err, publish.ErrNoChanges):
			slog.Info("Publish repository already up to date")
			recordRun(cfg, report, "schedule", "", nil)
			return nil
		case err != nil:
			recordRun(cfg, report, "schedule", "", err)
			return err
		}

		slog.Info("Cycle published site", logfields.Commit(result.Commit), logfields.Branch(result.Branch))
		recordRun(cfg, report, "schedule", result.Commit, nil)
		return nil
	}

	return daemon.New(cfg, cycle).Run(ctx)
}
