package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_SafeToUse(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("render", ResultSuccess)
	r.IncBuildOutcome("success")
	r.IncRebuild("watch")
	r.ObservePublishDuration(time.Second, true)
	r.IncPublishRetry()
	r.SetPostsRendered(3)
}

func TestPrometheusRecorder_RegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveStageDuration("render", 250*time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("render", ResultSuccess)
	r.IncBuildOutcome("success")
	r.IncRebuild("watch")
	r.ObservePublishDuration(2*time.Second, false)
	r.IncPublishRetry()
	r.SetPostsRendered(12)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"blog_stage_duration_seconds",
		"blog_build_duration_seconds",
		"blog_stage_results_total",
		"blog_build_outcomes_total",
		"blog_rebuilds_total",
		"blog_publish_duration_seconds",
		"blog_publish_retries_total",
		"blog_posts_rendered",
	} {
		require.True(t, names[want], "missing metric %s", want)
	}
}

func TestPrometheusRecorder_NilReceiverSafe(t *testing.T) {
	var r *PrometheusRecorder
	r.ObserveStageDuration("render", time.Second)
	r.IncBuildOutcome("success")
	r.SetPostsRendered(0)
}
