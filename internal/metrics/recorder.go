package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for build, rebuild and publish metrics.
// Implementations must tolerate nil receivers so injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	IncRebuild(trigger string)      // trigger: watch|schedule|manual
	ObservePublishDuration(d time.Duration, success bool)
	IncPublishRetry()
	SetPostsRendered(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) IncRebuild(string)                          {}
func (NoopRecorder) ObservePublishDuration(time.Duration, bool) {}
func (NoopRecorder) IncPublishRetry()                           {}
func (NoopRecorder) SetPostsRendered(int)                       {}
