package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
	"github.com/IQDevs/blog/internal/preview"
	"github.com/IQDevs/blog/internal/watch"
)

func runServe(ctx context.Context, cfg *config.Config, portOverride int) error {
	var rec metrics.Recorder = metrics.NoopRecorder{}
	var registry *prometheus.Registry
	if cfg.Serve.Metrics {
		registry = prometheus.NewRegistry()
		rec = metrics.NewPrometheusRecorder(registry)
	}

	if _, err := buildSite(ctx, cfg, cfg.Output.Directory, rec); err != nil {
		return err
	}

	port := cfg.Serve.Port
	if portOverride != 0 {
		port = portOverride
	}

	server := preview.NewServer(cfg.Output.Directory, port)
	if registry != nil {
		server.WithMetrics(registry)
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(stopCtx); err != nil {
			slog.Warn("Failed to stop preview server", logfields.Error(err))
		}
	}()

	rebuild := func(ctx context.Context) error {
		report, err := buildSite(ctx, cfg, cfg.Output.Directory, rec)
		recordRun(cfg, report, "watch", "", err)
		return err
	}

	dirs := []string{cfg.Content.PostsDir, cfg.Content.StaticDir, cfg.Content.Layouts}
	watcher := watch.New(dirs, cfg.Serve.QuietWindowDuration(), cfg.Serve.MaxDelayDuration(), rebuild).WithRecorder(rec)
	return watcher.Run(ctx)
}
