package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics — метрики HTTP API заказов.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTPMetrics регистрирует метрики HTTP API в глобальном реестре.
func NewHTTPMetrics() *HTTPMetrics {
	return NewHTTPMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewHTTPMetricsWithRegisterer регистрирует метрики HTTP API.
func NewHTTPMetricsWithRegisterer(registerer prometheus.Registerer) *HTTPMetrics {
	registerer = orDefault(registerer)

	return &HTTPMetrics{
		requests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bookorders_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"handler", "code"}),
		latency: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "bookorders_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"handler"}),
	}
}

// Observe учитывает обработанный запрос.
func (m *HTTPMetrics) Observe(handler string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(handler, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(handler).Observe(duration.Seconds())
}
