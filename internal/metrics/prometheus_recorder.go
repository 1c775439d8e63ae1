package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	rebuilds        *prom.CounterVec
	publishDuration *prom.HistogramVec
	publishRetries  prom.Counter
	postsRendered   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blog",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blog",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blog",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blog",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.rebuilds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blog",
			Name:      "rebuilds_total",
			Help:      "Rebuilds by trigger source",
		}, []string{"trigger"})
		pr.publishDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blog",
			Name:      "publish_duration_seconds",
			Help:      "Duration of publish (commit and push) operations",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.publishRetries = prom.NewCounter(prom.CounterOpts{
			Namespace: "blog",
			Name:      "publish_retries_total",
			Help:      "Transient publish failures that were retried",
		})
		pr.postsRendered = prom.NewGauge(prom.GaugeOpts{
			Namespace: "blog",
			Name:      "posts_rendered",
			Help:      "Number of posts rendered by the last build",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults,
			pr.buildOutcome, pr.rebuilds, pr.publishDuration, pr.publishRetries, pr.postsRendered)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncRebuild(trigger string) {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.WithLabelValues(trigger).Inc()
}

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration, success bool) {
	if p == nil || p.publishDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.publishDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishRetry() {
	if p == nil || p.publishRetries == nil {
		return
	}
	p.publishRetries.Inc()
}

func (p *PrometheusRecorder) SetPostsRendered(n int) {
	if p == nil || p.postsRendered == nil {
		return
	}
	p.postsRendered.Set(float64(n))
}

// HTTPHandler returns an http.Handler serving Prometheus metrics for reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
