package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	pagesRendered *prom.CounterVec
	filesSkipped  prom.Counter
	duplicateDest prom.Counter
	archiveNodes  prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "siteforge",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "siteforge",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "siteforge",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "siteforge",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesRendered = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "siteforge",
			Name:      "pages_rendered_total",
			Help:      "Pages rendered by kind",
		}, []string{"kind"})
		pr.filesSkipped = prom.NewCounter(prom.CounterOpts{
			Namespace: "siteforge",
			Name:      "files_unchanged_total",
			Help:      "Output files left untouched because their fingerprint matched",
		})
		pr.duplicateDest = prom.NewCounter(prom.CounterOpts{
			Namespace: "siteforge",
			Name:      "duplicate_dest_paths_total",
			Help:      "Builds aborted by a duplicate destination path",
		})
		pr.archiveNodes = prom.NewGauge(prom.GaugeOpts{
			Namespace: "siteforge",
			Name:      "archive_nodes",
			Help:      "Archive nodes in the last build",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.pagesRendered, pr.filesSkipped, pr.duplicateDest, pr.archiveNodes)
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

func (p *PrometheusRecorder) AddPagesRendered(kind PageKind, n int) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.WithLabelValues(string(kind)).Add(float64(n))
}

func (p *PrometheusRecorder) AddFilesSkipped(n int) {
	if p == nil || p.filesSkipped == nil {
		return
	}
	p.filesSkipped.Add(float64(n))
}

func (p *PrometheusRecorder) IncDuplicateDest() {
	if p == nil || p.duplicateDest == nil {
		return
	}
	p.duplicateDest.Inc()
}

func (p *PrometheusRecorder) SetArchiveNodes(n int) {
	if p == nil || p.archiveNodes == nil {
		return
	}
	p.archiveNodes.Set(float64(n))
}
