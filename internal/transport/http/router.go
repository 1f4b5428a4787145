package http

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
)

// NewRouter собирает HTTP API заказов вместе с логированием и метриками.
func NewRouter(svc OrderService, logger *log.Entry, m *metrics.HTTPMetrics) http.Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}

	mux := http.NewServeMux()
	mux.Handle("POST /orders", HandleSubmitOrder(svc, logger))
	mux.Handle("GET /orders", HandleListOrders(svc, logger))
	mux.Handle("GET /orders/{id}", HandleGetOrder(svc, logger))

	return RequestLogger(mux, logger, m)
}
