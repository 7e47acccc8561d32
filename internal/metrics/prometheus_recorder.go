package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	scanDuration   *prom.HistogramVec
	itemsLoaded    *prom.CounterVec
	malformed      *prom.CounterVec
	missingTypes   *prom.CounterVec
	renderDuration *prom.HistogramVec
	responses      *prom.CounterVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		scanDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of content type directory scans",
			Buckets:   prom.DefBuckets,
		}, []string{"type"}),
		itemsLoaded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "items_loaded_total",
			Help:      "Content items loaded by type",
		}, []string{"type"}),
		malformed: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_files_total",
			Help:      "Content files skipped because their front matter could not be parsed",
		}, []string{"type"}),
		missingTypes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "missing_type_directories_total",
			Help:      "Scans of configured content types whose directory does not exist",
		}, []string{"type"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of page, listing, sitemap and index renders",
			Buckets:   prom.DefBuckets,
		}, []string{"kind", "result"}),
		responses: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_responses_total",
			Help:      "HTTP responses by route kind and status code",
		}, []string{"kind", "status"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total static build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Static build outcomes",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.scanDuration, pr.itemsLoaded, pr.malformed, pr.missingTypes,
		pr.renderDuration, pr.responses, pr.buildDuration, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveScanDuration(contentType string, d time.Duration) {
	if p == nil {
		return
	}
	p.scanDuration.WithLabelValues(contentType).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddItemsLoaded(contentType string, n int) {
	if p == nil {
		return
	}
	p.itemsLoaded.WithLabelValues(contentType).Add(float64(n))
}

func (p *PrometheusRecorder) IncMalformed(contentType string) {
	if p == nil {
		return
	}
	p.malformed.WithLabelValues(contentType).Inc()
}

func (p *PrometheusRecorder) IncMissingType(contentType string) {
	if p == nil {
		return
	}
	p.missingTypes.WithLabelValues(contentType).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(kind string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.renderDuration.WithLabelValues(kind, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncResponse(kind string, status int) {
	if p == nil {
		return
	}
	p.responses.WithLabelValues(kind, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}
