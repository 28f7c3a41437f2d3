package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Flow outcomes by flow status (initiate/complete/resume) and result
	FlowOutcome *prometheus.CounterVec

	// Remote provider call latencies by operation
	ProviderLatency *prometheus.HistogramVec

	// End-to-end latency of a Verify call by flow status
	VerifyLatency *prometheus.HistogramVec

	// Audit events dropped because the inbox was full
	AuditDropped prometheus.Counter
}

// New creates a Metrics instance with all verification module metrics registered.
func New() *Metrics {
	return &Metrics{
		FlowOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriflow_verification_flows_total",
			Help: "Total verification flow outcomes by flow status and result",
		}, []string{"flow", "result"}), // result: "ok", "client_error", "server_error"

		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veriflow_provider_request_duration_seconds",
			Help:    "Duration of remote identity provider calls by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}), // operation: "create_applicant", "create_workflow_run", ...

		VerifyLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veriflow_verification_duration_seconds",
			Help:    "Duration of full verification flow handling by flow status",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"flow"}),

		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veriflow_audit_events_dropped_total",
			Help: "Total audit events dropped due to a full publisher inbox",
		}),
	}
}

// IncrementFlowOutcome records a verification flow outcome.
func (m *Metrics) IncrementFlowOutcome(flow, result string) {
	if m != nil {
		m.FlowOutcome.WithLabelValues(flow, result).Inc()
	}
}

// ObserveProviderLatency records the duration of a remote provider call.
func (m *Metrics) ObserveProviderLatency(operation string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// ObserveVerifyLatency records the total flow handling duration.
func (m *Metrics) ObserveVerifyLatency(flow string, d time.Duration) {
	if m != nil {
		m.VerifyLatency.WithLabelValues(flow).Observe(d.Seconds())
	}
}

// IncrementAuditDropped records a dropped audit event.
func (m *Metrics) IncrementAuditDropped() {
	if m != nil {
		m.AuditDropped.Inc()
	}
}
