// Package metrics provides Prometheus metrics collection for PageKit.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for PageKit.
type Collector struct {
	// Page metrics
	PageRenders     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Detail-view metrics
	SavesTotal         *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	RemovesTotal       *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered on the given registerer.
// Tests use a fresh registry to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		PageRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagekit",
				Name:      "page_renders_total",
				Help:      "Total pages rendered",
			},
			[]string{"page", "resource"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pagekit",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "status"},
		),
		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagekit",
				Name:      "saves_total",
				Help:      "Save attempts by resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagekit",
				Name:      "validation_failures_total",
				Help:      "Saves rejected with field errors",
			},
			[]string{"resource"},
		),
		RemovesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagekit",
				Name:      "removes_total",
				Help:      "Delete attempts by resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pagekit",
				Name:      "config_reloads_total",
				Help:      "Successful configuration reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pagekit",
				Name:      "config_reload_errors_total",
				Help:      "Failed configuration reloads",
			},
		),
	}
}

// ObserveSave records a save attempt.
func (c *Collector) ObserveSave(resource string, err error, validation bool) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if validation {
			outcome = "validation"
			c.ValidationFailures.WithLabelValues(resource).Inc()
		}
	}
	c.SavesTotal.WithLabelValues(resource, outcome).Inc()
}
