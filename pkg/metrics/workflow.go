package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics exposes gauges the cron worker refreshes on every sweep.
type WorkflowMetrics struct {
	outboxBacklog   prometheus.Gauge
	staleProcessing prometheus.Gauge
	transitions     *prometheus.CounterVec
}

// NewWorkflowMetrics registers the checkout workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	outboxBacklog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_unpublished_events",
		Help: "Outbox rows waiting to be published.",
	})
	staleProcessing := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "refunds_stale_processing",
		Help: "Deposit refunds stuck in processing past the confirmation timeout.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_transitions_total",
		Help: "Checkout state transitions by target status.",
	}, []string{"to_status"})
	reg.MustRegister(outboxBacklog, staleProcessing, transitions)
	return &WorkflowMetrics{
		outboxBacklog:   outboxBacklog,
		staleProcessing: staleProcessing,
		transitions:     transitions,
	}
}

// SetOutboxBacklog records the current unpublished outbox depth.
func (w *WorkflowMetrics) SetOutboxBacklog(count int64) {
	if w == nil || w.outboxBacklog == nil {
		return
	}
	w.outboxBacklog.Set(float64(count))
}

// SetStaleProcessing records how many refunds the sweep flagged.
func (w *WorkflowMetrics) SetStaleProcessing(count int64) {
	if w == nil || w.staleProcessing == nil {
		return
	}
	w.staleProcessing.Set(float64(count))
}

// IncTransition counts a successful transition into the given status.
func (w *WorkflowMetrics) IncTransition(toStatus string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}
