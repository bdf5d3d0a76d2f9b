package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWorkflowMetricsExportsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkflowMetrics(reg)

	metrics.SetOutboxBacklog(7)
	metrics.SetStaleProcessing(2)
	metrics.IncTransition("refund_processing")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if mf := findMetricFamily(mfs, "outbox_unpublished_events"); mf == nil {
		t.Fatalf("outbox gauge not registered")
	} else if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 7 {
		t.Fatalf("expected backlog 7, got %f", got)
	}

	if mf := findMetricFamily(mfs, "refunds_stale_processing"); mf == nil {
		t.Fatalf("stale processing gauge not registered")
	} else if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 2 {
		t.Fatalf("expected stale count 2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_transitions_total", "to_status", "refund_processing"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 transition, got %f", got)
	}
}

func TestWorkflowMetricsNilRegisterer(t *testing.T) {
	metrics := NewWorkflowMetrics(nil)
	metrics.SetOutboxBacklog(1)
	metrics.SetStaleProcessing(1)
	metrics.IncTransition("completed")
}
