package telemetry

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/router"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "routetree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for match duration.
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry.
	Registry prometheus.Registerer

	// Gatherer serves Handler. Defaults to Registry when it is one.
	Gatherer prometheus.Gatherer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the registry the collectors are registered on. If it
// also gathers (as *prometheus.Registry does) Handler serves it.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
		if g, ok := registry.(prometheus.Gatherer); ok {
			c.Gatherer = g
		}
	}
}

func defaultMetricsConfig() MetricsConfig {
	// Path lookups are microsecond-scale.
	return MetricsConfig{
		Namespace: "routetree",
		Buckets:   []float64{.000001, .000005, .00001, .00005, .0001, .0005, .001, .005},
	}
}

// Metrics holds the collectors for one router.
type Metrics struct {
	matches       *prometheus.CounterVec
	matchDuration prometheus.Histogram
	generates     *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		reg := prometheus.NewRegistry()
		config.Registry = reg
		config.Gatherer = reg
	}

	factory := promauto.With(config.Registry)
	return &Metrics{
		matches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "matches_total",
			Help:        "Total number of path matches by route and result",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "result"}),

		matchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "match_duration_seconds",
			Help:        "Path match duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		generates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "generates_total",
			Help:        "Total number of URL generations by route and result",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "result"}),

		gatherer: config.Gatherer,
	}
}

// ObserveMatch records one match. m is nil for a miss.
func (m *Metrics) ObserveMatch(match *router.Match, d time.Duration) {
	m.matchDuration.Observe(d.Seconds())
	if match == nil {
		m.matches.WithLabelValues("", "miss").Inc()
		return
	}
	m.matches.WithLabelValues(match.Route().Name, "hit").Inc()
}

// ObserveGenerate records one generation.
func (m *Metrics) ObserveGenerate(name string, err error) {
	if err == nil {
		m.generates.WithLabelValues(name, "ok").Inc()
		return
	}
	code := errorCode(err)
	if code == rterrors.CodeUnknownRoute {
		// Unknown names are caller input; keep them out of the labels.
		name = ""
	}
	m.generates.WithLabelValues(name, code).Inc()
}

// Handler serves the collected metrics. It returns nil when the registry
// cannot be gathered from.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return nil
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// errorCode returns the registered code of err, or "internal". This keeps
// error labels low-cardinality.
func errorCode(err error) string {
	var e *rterrors.Error
	if stderrors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "internal"
}
