// Package daemon runs scheduled build-and-publish cycles, either on a fixed
// interval or a cron expression.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
)

// CycleFunc performs one build-and-publish cycle.
type CycleFunc func(ctx context.Context) error

// Daemon schedules periodic cycles.
type Daemon struct {
	cfg      *config.Config
	cycle    CycleFunc
	recorder metrics.Recorder

	mu      sync.Mutex
	running bool
}

// New creates a daemon running cycle on the configured schedule.
func New(cfg *config.Config, cycle CycleFunc) *Daemon {
	return &Daemon{cfg: cfg, cycle: cycle, recorder: metrics.NoopRecorder{}}
}

// WithRecorder injects a metrics recorder (fluent helper).
func (d *Daemon) WithRecorder(r metrics.Recorder) *Daemon {
	if r != nil {
		d.recorder = r
	}
	return d
}

// jobDefinition builds the gocron schedule from the configuration. Cron wins
// over interval when both are set.
func (d *Daemon) jobDefinition() (gocron.JobDefinition, string, error) {
	sched := d.cfg.Schedule
	if sched.Cron != "" {
		return gocron.CronJob(sched.Cron, false), "cron " + sched.Cron, nil
	}
	if sched.Interval != "" {
		interval, err := time.ParseDuration(sched.Interval)
		if err != nil {
			return nil, "", fmt.Errorf("invalid schedule interval %q: %w", sched.Interval, err)
		}
		if interval < time.Second {
			return nil, "", fmt.Errorf("schedule interval %s is below 1s", interval)
		}
		return gocron.DurationJob(interval), "every " + interval.String(), nil
	}
	return nil, "", errors.New("daemon requires schedule.interval or schedule.cron")
}

// Run schedules cycles until ctx is canceled. The first cycle runs
// immediately.
func (d *Daemon) Run(ctx context.Context) error {
	def, desc, err := d.jobDefinition()
	if err != nil {
		return err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		def,
		gocron.NewTask(d.runCycle, ctx),
		gocron.WithName("build-publish"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule build job: %w", err)
	}

	slog.Info("Daemon started", slog.String("schedule", desc))
	scheduler.Start()

	<-ctx.Done()
	slog.Info("Daemon shutting down")
	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}

// runCycle executes one cycle, skipping ticks that land while a cycle is
// still in flight.
func (d *Daemon) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		slog.Warn("Skipping scheduled cycle, previous cycle still running")
		return
	}
	d.running = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	d.recorder.IncRebuild("schedule")
	start := time.Now()
	if err := d.cycle(ctx); err != nil {
		slog.Error("Scheduled cycle failed", logfields.Error(err))
		return
	}
	slog.Info("Scheduled cycle complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
