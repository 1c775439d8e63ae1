// Package publish pushes a built site into the publish repository: clone or
// update the checkout, replace its contents, commit, and push, with a branch
// gate and retries for transient failures.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/git"
	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
	"github.com/IQDevs/blog/internal/retry"
	"github.com/IQDevs/blog/internal/workspace"
)

// ErrBranchGate is returned when the content checkout is not on the
// configured source branch.
var ErrBranchGate = errors.New("not on the publish source branch")

// ErrNoChanges is returned when the built site matches what is already
// published.
var ErrNoChanges = errors.New("published site is already up to date")

// Result describes a completed publish.
type Result struct {
	Commit   string
	Branch   string
	Duration time.Duration
	Attempts int
}

// Publisher deploys a built site directory into the publish repository.
type Publisher struct {
	cfg      *config.Config
	recorder metrics.Recorder

	// contentDir is where the source branch gate looks for the content
	// repository (default "."). Overridable for tests.
	contentDir string

	// workspaceDir roots the persistent publish checkout so repeated
	// publishes fetch instead of recloning (default ".blog").
	workspaceDir string

	// message overrides the generated commit message when non-empty.
	message string
}

// NewPublisher creates a publisher for the given configuration.
func NewPublisher(cfg *config.Config) *Publisher {
	return &Publisher{
		cfg:          cfg,
		recorder:     metrics.NoopRecorder{},
		contentDir:   ".",
		workspaceDir: ".blog",
	}
}

// WithRecorder injects a metrics recorder (fluent helper).
func (p *Publisher) WithRecorder(r metrics.Recorder) *Publisher {
	if r != nil {
		p.recorder = r
	}
	return p
}

// WithContentDir overrides where the branch gate inspects the content
// repository.
func (p *Publisher) WithContentDir(dir string) *Publisher {
	p.contentDir = dir
	return p
}

// WithMessage overrides the generated commit message.
func (p *Publisher) WithMessage(msg string) *Publisher {
	p.message = msg
	return p
}

// WithWorkspaceDir overrides where the persistent publish checkout lives.
func (p *Publisher) WithWorkspaceDir(dir string) *Publisher {
	if dir != "" {
		p.workspaceDir = dir
	}
	return p
}

// CheckGate verifies the content checkout is on the configured source branch.
// An empty SourceBranch disables the gate.
func (p *Publisher) CheckGate() error {
	want := p.cfg.Publish.SourceBranch
	if want == "" {
		return nil
	}
	got, err := git.CurrentBranch(p.contentDir)
	if err != nil {
		return fmt.Errorf("branch gate: %w", err)
	}
	if got != want {
		return fmt.Errorf("%w: on %q, want %q", ErrBranchGate, got, want)
	}
	return nil
}

// Publish deploys siteDir. Transient git failures are retried per the
// configured policy; permanent failures (auth, missing repo) fail
// immediately. The failure is always propagated raw so the exit status
// reflects the deploy outcome.
func (p *Publisher) Publish(ctx context.Context, siteDir string) (*Result, error) {
	if err := p.CheckGate(); err != nil {
		return nil, err
	}
	if p.cfg.Publish.URL == "" {
		return nil, fmt.Errorf("publish.url is not configured")
	}

	// The checkout persists across publishes so later runs fetch and reset
	// instead of recloning.
	ws := workspace.NewPersistentManager(p.workspaceDir, "workspace")
	if err := ws.Create(); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	policy := retry.FromPublishConfig(p.cfg.Publish)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			p.recorder.IncPublishRetry()
			delay := policy.Delay(attempt)
			slog.Warn("Retrying publish",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				logfields.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				p.recorder.ObservePublishDuration(time.Since(start), false)
				return nil, ctx.Err()
			}
		}

		result, err := p.publishOnce(ctx, ws.Path(), siteDir)
		if err == nil {
			result.Duration = time.Since(start)
			result.Attempts = attempt + 1
			p.recorder.ObservePublishDuration(result.Duration, true)
			slog.Info("Publish complete",
				logfields.Commit(result.Commit),
				logfields.Branch(result.Branch),
				logfields.DurationMS(float64(result.Duration.Milliseconds())))
			return result, nil
		}
		if errors.Is(err, ErrNoChanges) || git.IsPermanent(err) || ctx.Err() != nil {
			p.recorder.ObservePublishDuration(time.Since(start), false)
			return nil, err
		}
		lastErr = err
	}

	p.recorder.ObservePublishDuration(time.Since(start), false)
	return nil, fmt.Errorf("publish failed after %d retries: %w", policy.MaxRetries, lastErr)
}

func (p *Publisher) publishOnce(ctx context.Context, workDir, siteDir string) (*Result, error) {
	client := git.NewClient(workDir)
	co, err := client.CloneOrUpdate(ctx, p.cfg.Publish)
	if err != nil {
		return nil, err
	}

	if err := co.ReplaceContents(siteDir, p.cfg.Publish.Preserve); err != nil {
		return nil, err
	}

	commit, err := co.CommitAll(p.commitMessage(), p.cfg.Publish.Committer)
	if err != nil {
		if errors.Is(err, git.ErrNothingToCommit) {
			return nil, ErrNoChanges
		}
		return nil, err
	}

	if err := co.Push(ctx); err != nil {
		return nil, err
	}

	return &Result{Commit: commit, Branch: p.cfg.Publish.Branch}, nil
}

func (p *Publisher) commitMessage() string {
	if p.message != "" {
		return p.message
	}
	return fmt.Sprintf("Publish site %s", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
}
