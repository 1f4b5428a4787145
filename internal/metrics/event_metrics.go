package metrics

import "github.com/prometheus/client_golang/prometheus"

// Результаты публикации события о заказе.
const (
	EventSent       = "sent"
	EventRetryError = "retry_error"
	EventFailed     = "failed"
	EventDropped    = "dropped"
)

// EventMetrics содержит метрики асинхронной публикации событий.
type EventMetrics struct {
	publishAttempts *prometheus.CounterVec
	queueDepth      prometheus.Gauge
}

// NewEventMetrics регистрирует метрики в DefaultRegisterer.
func NewEventMetrics() *EventMetrics {
	return NewEventMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewEventMetricsWithRegisterer регистрирует метрики в переданном registerer.
func NewEventMetricsWithRegisterer(registerer prometheus.Registerer) *EventMetrics {
	registerer = orDefault(registerer)

	return &EventMetrics{
		publishAttempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bookorders_event_publish_attempts_total",
			Help: "Total number of order event publish attempts grouped by result.",
		}, []string{"result"}),
		queueDepth: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "bookorders_event_queue_depth",
			Help: "Number of order events waiting to be published.",
		}),
	}
}

// RecordPublish учитывает попытку публикации.
func (m *EventMetrics) RecordPublish(result string) {
	if m == nil {
		return
	}
	m.publishAttempts.WithLabelValues(result).Inc()
}

// SetQueueDepth обновляет размер очереди.
func (m *EventMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}
