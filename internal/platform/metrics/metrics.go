package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SignaturesCreated prometheus.Counter
	Rejections        *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on the given registerer. Tests use
// this with a fresh registry so suites never collide on registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SignaturesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "petition_signatures_created_total",
			Help: "Total number of signatures accepted and persisted",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "petition_rejections_total",
			Help: "Total number of rejected submissions by reason",
		}, []string{"reason"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "petition_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// IncrementSignaturesCreated increments the accepted-signature counter by 1.
func (m *Metrics) IncrementSignaturesCreated() {
	if m == nil {
		return
	}
	m.SignaturesCreated.Inc()
}

// IncrementRejections counts a rejected submission under its reason code.
func (m *Metrics) IncrementRejections(reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(reason).Inc()
}

// ObserveRequestDuration records one request's latency.
func (m *Metrics) ObserveRequestDuration(method, path string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
