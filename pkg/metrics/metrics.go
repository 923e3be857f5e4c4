// Package metrics defines the Prometheus collectors recorded by the showroom
// tools: per-run indexation results and preview server request metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

const namespace = "showroom"

// IndexCheck holds the collectors of a single indexation run. Each run owns a
// fresh registry so the exported textfile only contains that run.
type IndexCheck struct {
	registry *prometheus.Registry

	Routes      prometheus.Gauge
	Failures    *prometheus.GaugeVec
	Warnings    *prometheus.GaugeVec
	LiveLatency prometheus.Histogram
	LastRun     prometheus.Gauge
}

// NewIndexCheck creates and registers the indexation collectors.
func NewIndexCheck() *IndexCheck {
	m := &IndexCheck{
		registry: prometheus.NewRegistry(),
		Routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexcheck",
			Name:      "routes",
			Help:      "Number of URLs listed in the sitemap.",
		}),
		Failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexcheck",
			Name:      "failures",
			Help:      "Number of failed checks by check name.",
		}, []string{"check"}),
		Warnings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexcheck",
			Name:      "warnings",
			Help:      "Number of warnings by check name.",
		}, []string{"check"}),
		LiveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indexcheck",
			Name:      "live_request_duration_seconds",
			Help:      "Duration of live HEAD requests.",
			Buckets:   DefaultBuckets,
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexcheck",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last indexation run.",
		}),
	}
	m.registry.MustRegister(m.Routes, m.Failures, m.Warnings, m.LiveLatency, m.LastRun)

	return m
}

// Registry returns the registry holding the run's collectors.
func (m *IndexCheck) Registry() *prometheus.Registry { return m.registry }

// MarkRun stamps the run time.
func (m *IndexCheck) MarkRun(t time.Time) {
	m.LastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes the run's metrics in the Prometheus text format, e.g.
// for the node_exporter textfile collector.
func (m *IndexCheck) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("could not write metrics textfile: %w", err)
	}

	return nil
}

// HTTP holds the preview server request collectors.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP creates the request collectors and registers them with reg.
func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	m := &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "requests_total",
			Help:      "Number of requests served by the preview server.",
		}, []string{"method", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests served by the preview server.",
			Buckets:   DefaultBuckets,
		}, []string{"method"}),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("could not register collector: %w", err)
		}
	}

	return m, nil
}
