package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы одной попытки запроса к каталогу.
const (
	AttemptOK       = "ok"
	AttemptNotFound = "not_found"
	AttemptError    = "error"
)

// Итоги поиска книги целиком (с учётом retry).
const (
	LookupFound     = "found"
	LookupNotFound  = "not_found"
	LookupTimeout   = "timeout"
	LookupExhausted = "exhausted"
	LookupCanceled  = "canceled"
)

// CatalogMetrics содержит метрики обращений к каталогу книг.
// Nil-значение допустимо: все методы становятся no-op.
type CatalogMetrics struct {
	attempts       *prometheus.CounterVec
	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
}

// NewCatalogMetrics регистрирует метрики в DefaultRegisterer.
func NewCatalogMetrics() *CatalogMetrics {
	return NewCatalogMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCatalogMetricsWithRegisterer регистрирует метрики в переданном registerer.
func NewCatalogMetricsWithRegisterer(registerer prometheus.Registerer) *CatalogMetrics {
	registerer = orDefault(registerer)

	return &CatalogMetrics{
		attempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bookorders_catalog_attempts_total",
			Help: "Total number of catalog HTTP attempts grouped by outcome.",
		}, []string{"outcome"}),
		lookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bookorders_catalog_lookups_total",
			Help: "Total number of book lookups grouped by final result.",
		}, []string{"result"}),
		lookupDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "bookorders_catalog_lookup_duration_seconds",
			Help:    "Duration of book lookups including retries and backoff.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 3.0, 5.0},
		}),
	}
}

// RecordAttempt учитывает одну попытку запроса.
func (m *CatalogMetrics) RecordAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

// RecordLookup учитывает итог поиска и его длительность.
func (m *CatalogMetrics) RecordLookup(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
	m.lookupDuration.Observe(duration.Seconds())
}
