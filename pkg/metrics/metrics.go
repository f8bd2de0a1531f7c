// Package metrics exposes validation counters in the Prometheus format for
// long running modes (wffcheck watch and the MCP server).
package metrics

import (
	"net/http"
	"time"

	"github.com/ormasoftchile/wffcheck/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records validation runs into its own registry.
type Collector struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	findings  *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewCollector registers the wffcheck metrics on registry, or on a fresh
// registry when nil.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wffcheck",
			Name:      "documents_total",
			Help:      "Documents validated, by outcome over the targeted versions.",
		}, []string{"outcome"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wffcheck",
			Name:      "findings_total",
			Help:      "Validation findings, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wffcheck",
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating one document.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
	registry.MustRegister(c.documents, c.findings, c.duration)
	return c
}

// Observe records one validation. outcome is "success", "partial-success",
// "failure" or "error" for documents that could not be read.
func (c *Collector) Observe(outcome string, errs validation.ErrorMap, elapsed time.Duration) {
	c.documents.WithLabelValues(outcome).Inc()
	for _, k := range errs.Keys() {
		for _, e := range errs[k] {
			c.findings.WithLabelValues(string(e.Kind())).Inc()
		}
	}
	c.duration.Observe(elapsed.Seconds())
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
