package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
)

func TestRequestLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	registry := prometheus.NewRegistry()
	m := metrics.NewHTTPMetricsWithRegisterer(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := RequestLogger(mux, log.NewEntry(logger), m)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, http.StatusTeapot, entry.Data["status"])
	require.Equal(t, "/ping", entry.Data["path"])

	require.Equal(t, 1.0, requestCount(t, registry, "GET /ping"))
}

func requestCount(t *testing.T, registry *prometheus.Registry, handler string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != "bookorders_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "handler" && label.GetValue() == handler {
					total += metric.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestRequestLogger_UnmatchedRoute(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	registry := prometheus.NewRegistry()
	handler := RequestLogger(http.NewServeMux(), log.NewEntry(logger), metrics.NewHTTPMetricsWithRegisterer(registry))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, 1.0, requestCount(t, registry, "unmatched"))
}
