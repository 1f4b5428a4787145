package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := vec.WithLabelValues(labels...).Write(metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func TestCatalogMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCatalogMetricsWithRegisterer(reg)

	m.RecordAttempt(AttemptError)
	m.RecordAttempt(AttemptError)
	m.RecordAttempt(AttemptOK)
	m.RecordLookup(LookupFound, 50*time.Millisecond)

	if got := counterValue(t, m.attempts, AttemptError); got != 2 {
		t.Fatalf("expected 2 error attempts, got %v", got)
	}
	if got := counterValue(t, m.attempts, AttemptOK); got != 1 {
		t.Fatalf("expected 1 ok attempt, got %v", got)
	}
	if got := counterValue(t, m.lookups, LookupFound); got != 1 {
		t.Fatalf("expected 1 found lookup, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}
}

func TestCatalogMetrics_ReRegisterReturnsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewCatalogMetricsWithRegisterer(reg)
	second := NewCatalogMetricsWithRegisterer(reg)

	first.RecordAttempt(AttemptNotFound)
	if got := counterValue(t, second.attempts, AttemptNotFound); got != 1 {
		t.Fatalf("expected shared collector, got %v", got)
	}
}

func TestOrderMetrics_TrackSubmit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(reg)

	done := m.TrackSubmit()
	metric := &dto.Metric{}
	if err := m.inFlight.Write(metric); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	if metric.GetGauge().GetValue() != 1 {
		t.Fatalf("expected 1 in-flight submission, got %v", metric.GetGauge().GetValue())
	}

	done()
	metric = &dto.Metric{}
	if err := m.inFlight.Write(metric); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	if metric.GetGauge().GetValue() != 0 {
		t.Fatalf("expected 0 in-flight submissions, got %v", metric.GetGauge().GetValue())
	}

	m.RecordSubmitted("ACCEPTED")
	m.RecordFailure(FailureInvalidRequest)
	if got := counterValue(t, m.submitted, "ACCEPTED"); got != 1 {
		t.Fatalf("expected 1 accepted, got %v", got)
	}
	if got := counterValue(t, m.failures, FailureInvalidRequest); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var catalog *CatalogMetrics
	var orders *OrderMetrics
	var httpMetrics *HTTPMetrics
	var events *EventMetrics

	catalog.RecordAttempt(AttemptOK)
	catalog.RecordLookup(LookupFound, time.Second)
	orders.RecordSubmitted("ACCEPTED")
	orders.RecordFailure(FailureStorage)
	orders.TrackSubmit()()
	httpMetrics.Observe("orders_list", 200, time.Millisecond)
	events.RecordPublish(EventSent)
	events.SetQueueDepth(3)
}

func TestHTTPMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegisterer(reg)

	m.Observe("orders_submit", 200, 10*time.Millisecond)
	m.Observe("orders_submit", 400, time.Millisecond)

	if got := counterValue(t, m.requests, "orders_submit", "200"); got != 1 {
		t.Fatalf("expected 1 request with 200, got %v", got)
	}
	if got := counterValue(t, m.requests, "orders_submit", "400"); got != 1 {
		t.Fatalf("expected 1 request with 400, got %v", got)
	}
}

func TestEventMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEventMetricsWithRegisterer(reg)

	m.RecordPublish(EventSent)
	m.RecordPublish(EventSent)
	m.RecordPublish(EventDropped)
	m.SetQueueDepth(5)

	if got := counterValue(t, m.publishAttempts, EventSent); got != 2 {
		t.Fatalf("expected 2 sent events, got %v", got)
	}
	if got := counterValue(t, m.publishAttempts, EventDropped); got != 1 {
		t.Fatalf("expected 1 dropped event, got %v", got)
	}

	metric := &dto.Metric{}
	if err := m.queueDepth.Write(metric); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 5 {
		t.Fatalf("expected queue depth 5, got %v", got)
	}
}
