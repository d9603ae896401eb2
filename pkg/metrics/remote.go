package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RemoteCallMetrics records the outcome of calls the purchase tool makes to the backend.
type RemoteCallMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	stale    *prometheus.CounterVec
}

// NewRemoteCallMetrics registers the remote call metrics on the provided registerer.
func NewRemoteCallMetrics(reg prometheus.Registerer) *RemoteCallMetrics {
	if reg == nil {
		return &RemoteCallMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remote_call_duration_seconds",
		Help:    "Duration of remote calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_call_success",
		Help: "Successful remote calls.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_call_failure",
		Help: "Failed remote calls.",
	}, []string{"operation"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_call_stale",
		Help: "Remote responses discarded because a newer request superseded them.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure, stale)
	return &RemoteCallMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		stale:    stale,
	}
}

// Observe records duration plus the success or failure counter for the operation.
func (m *RemoteCallMetrics) Observe(operation string, duration time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	m.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.failure.WithLabelValues(op).Inc()
		return
	}
	m.success.WithLabelValues(op).Inc()
}

// IncStale counts a response that arrived after a newer request was issued.
func (m *RemoteCallMetrics) IncStale(operation string) {
	if m == nil || m.stale == nil {
		return
	}
	m.stale.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
