package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once        sync.Once
	documents   *prom.CounterVec
	events      *prom.CounterVec
	outputBytes prom.Histogram
	duration    *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers the md4go metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.documents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "md4go",
			Name:      "documents_total",
			Help:      "Documents processed by path and outcome",
		}, []string{"path", "outcome"})
		pr.events = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "md4go",
			Name:      "events_dispatched_total",
			Help:      "Parser events delivered to handlers by kind",
		}, []string{"kind"})
		pr.outputBytes = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "md4go",
			Name:      "output_bytes",
			Help:      "Size of rendered HTML output",
			Buckets:   prom.ExponentialBuckets(256, 4, 8),
		})
		pr.duration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "md4go",
			Name:      "duration_seconds",
			Help:      "Duration of parse and render calls",
			Buckets:   prom.DefBuckets,
		}, []string{"path"})
		reg.MustRegister(pr.documents, pr.events, pr.outputBytes, pr.duration)
	})
	return pr
}

func (p *PrometheusRecorder) IncDocument(path Path, outcome Outcome) {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.WithLabelValues(string(path), string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddEvents(kind string, n int) {
	if p == nil || p.events == nil || n <= 0 {
		return
	}
	p.events.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveOutputBytes(n int) {
	if p == nil || p.outputBytes == nil {
		return
	}
	p.outputBytes.Observe(float64(n))
}

func (p *PrometheusRecorder) ObserveDuration(path Path, d time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(string(path)).Observe(d.Seconds())
}
