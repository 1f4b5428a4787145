package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины, по которым оформление заказа завершилось ошибкой.
const (
	FailureInvalidRequest = "invalid_request"
	FailureDuplicateID    = "duplicate_id"
	FailureCanceled       = "canceled"
	FailureStorage        = "storage"
)

// OrderMetrics содержит метрики оформления заказов.
type OrderMetrics struct {
	submitted      *prometheus.CounterVec
	failures       *prometheus.CounterVec
	submitDuration prometheus.Histogram
	inFlight       prometheus.Gauge
}

// NewOrderMetrics регистрирует метрики в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном registerer.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	registerer = orDefault(registerer)

	return &OrderMetrics{
		submitted: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bookorders_orders_submitted_total",
			Help: "Total number of stored orders grouped by admission status.",
		}, []string{"status"}),
		failures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bookorders_order_submit_failures_total",
			Help: "Total number of failed order submissions grouped by reason.",
		}, []string{"reason"}),
		submitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "bookorders_order_submit_duration_seconds",
			Help:    "Duration of SubmitOrder calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "bookorders_order_submissions_in_flight",
			Help: "Number of order submissions currently in progress.",
		}),
	}
}

// RecordSubmitted учитывает сохранённый заказ.
func (m *OrderMetrics) RecordSubmitted(status string) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(status).Inc()
}

// RecordFailure учитывает неуспешное оформление.
func (m *OrderMetrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

// TrackSubmit увеличивает gauge активных оформлений и возвращает функцию завершения,
// которая записывает длительность.
func (m *OrderMetrics) TrackSubmit() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.inFlight.Inc()
	return func() {
		m.inFlight.Dec()
		m.submitDuration.Observe(time.Since(start).Seconds())
	}
}
