package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EventsPublished   *prometheus.CounterVec
	EventsDelivered   *prometheus.CounterVec
	BatchFailures     *prometheus.CounterVec
	BatchSize         *prometheus.HistogramVec
	AccessDenied      *prometheus.CounterVec
	FacadeInvocations *prometheus.CounterVec
	UserInfoLatency   prometheus.Histogram
}

// New creates and registers all metrics with reg. Pass
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idbridge_change_events_published_total",
			Help: "Change events handed to the event channel, by kind",
		}, []string{"kind"}),
		EventsDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idbridge_change_events_applied_total",
			Help: "Change events applied by the consumer, by kind",
		}, []string{"kind"}),
		BatchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idbridge_change_event_batch_failures_total",
			Help: "Delivered batches aborted by the consumer, by kind and reason",
		}, []string{"kind", "reason"}),
		BatchSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idbridge_change_event_batch_size",
			Help:    "Number of events per delivered batch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 200},
		}, []string{"kind"}),
		AccessDenied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idbridge_access_denied_total",
			Help: "Access gate denials, by check",
		}, []string{"check"}),
		FacadeInvocations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idbridge_facade_invocations_total",
			Help: "Facade invocations, by operation and outcome",
		}, []string{"operation", "outcome"}),
		UserInfoLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idbridge_userinfo_request_duration_seconds",
			Help:    "Latency of identity endpoint calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncPublished increments the published counter for kind.
func (m *Metrics) IncPublished(kind string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(kind).Inc()
}

// ObserveBatch records a successfully applied batch.
func (m *Metrics) ObserveBatch(kind string, size int) {
	if m == nil {
		return
	}
	m.BatchSize.WithLabelValues(kind).Observe(float64(size))
	m.EventsDelivered.WithLabelValues(kind).Add(float64(size))
}

// IncBatchFailure records an aborted batch.
func (m *Metrics) IncBatchFailure(kind, reason string) {
	if m == nil {
		return
	}
	m.BatchFailures.WithLabelValues(kind, reason).Inc()
}

// IncAccessDenied records a gate denial.
func (m *Metrics) IncAccessDenied(check string) {
	if m == nil {
		return
	}
	m.AccessDenied.WithLabelValues(check).Inc()
}

// IncInvocation records a facade call outcome ("ok" or an error code).
func (m *Metrics) IncInvocation(operation, outcome string) {
	if m == nil {
		return
	}
	m.FacadeInvocations.WithLabelValues(operation, outcome).Inc()
}

// ObserveUserInfo records identity endpoint latency.
func (m *Metrics) ObserveUserInfo(start time.Time) {
	if m == nil {
		return
	}
	m.UserInfoLatency.Observe(time.Since(start).Seconds())
}
