// Package metrics exposes Prometheus instrumentation for claim verification.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lirov/claim-checker/internal/model"
)

// Metrics holds the verifier's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	verdicts      *prometheus.CounterVec
	gatewayErrors prometheus.Counter
	claimsFailed  prometheus.Counter
	duration      prometheus.Histogram
}

// New registers the verifier collectors plus Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimcheck_verdicts_total",
			Help: "Completed verifications by verdict label.",
		}, []string{"label"}),
		gatewayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claimcheck_gateway_errors_total",
			Help: "Evidence lookups that failed and were treated as empty.",
		}),
		claimsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claimcheck_claims_failed_total",
			Help: "Verifications that ended with the claim in error status.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimcheck_verify_duration_seconds",
			Help:    "Wall time of a verification run.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.verdicts,
		m.gatewayErrors,
		m.claimsFailed,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveVerdict counts a completed verification
func (m *Metrics) ObserveVerdict(label model.VerdictLabel, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(string(label)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// ObserveFailure counts a failed verification
func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.claimsFailed.Inc()
	m.duration.Observe(elapsed.Seconds())
}

// GatewayError counts a failed evidence lookup
func (m *Metrics) GatewayError() {
	if m == nil {
		return
	}
	m.gatewayErrors.Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
