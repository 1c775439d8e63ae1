package site

import (
	"time"

	"github.com/IQDevs/blog/internal/metrics"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareStaging StageName = "prepare_staging"
	StageLoadPosts      StageName = "load_posts"
	StageRenderPosts    StageName = "render_posts"
	StageIndexes        StageName = "indexes"
	StageFeed           StageName = "feed"
	StageCopyStatic     StageName = "copy_static"
	StageSwapOutput     StageName = "swap_output"
)

// StageResult enumerates per-stage outcomes. Values mirror metrics.ResultLabel
// to simplify emission.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// Outcome is the final classification of a whole build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Issue records a non-fatal problem observed during a build (e.g. a post
// whose front-matter date disagrees with its filename).
type Issue struct {
	Stage   StageName
	Message string
}

// Report summarizes a single build run.
type Report struct {
	BuildID        string
	StartedAt      time.Time
	Duration       time.Duration
	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]StageResult
	PostsRendered  int
	PagesWritten   int
	Outcome        Outcome
	Issues         []Issue
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		StartedAt:      time.Now(),
		StageDurations: map[StageName]time.Duration{},
		StageResults:   map[StageName]StageResult{},
	}
}

// AddIssue appends a warning-level issue to the report.
func (r *Report) AddIssue(stage StageName, message string) {
	r.Issues = append(r.Issues, Issue{Stage: stage, Message: message})
}

func (r *Report) recordStage(stage StageName, res StageResult, d time.Duration, rec metrics.Recorder) {
	r.StageDurations[stage] = d
	r.StageResults[stage] = res
	if rec != nil {
		rec.ObserveStageDuration(string(stage), d)
		rec.IncStageResult(string(stage), metrics.ResultLabel(res))
	}
}

func (r *Report) finish(rec metrics.Recorder) {
	r.Duration = time.Since(r.StartedAt)
	if r.Outcome == "" {
		r.Outcome = OutcomeSuccess
		if len(r.Issues) > 0 {
			r.Outcome = OutcomeWarning
		}
	}
	if rec != nil {
		rec.ObserveBuildDuration(r.Duration)
		rec.IncBuildOutcome(string(r.Outcome))
		rec.SetPostsRendered(r.PostsRendered)
	}
}
