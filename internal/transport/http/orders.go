package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

const maxRequestBody = 1 << 16

// OrderService — операции над заказами, нужные HTTP API.
type OrderService interface {
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
}

// HandleSubmitOrder обрабатывает POST /orders. ACCEPTED и REJECTED оба отдаются с 200.
func HandleSubmitOrder(svc OrderService, logger *log.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body submitOrderRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
		if err := decoder.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		order, err := svc.SubmitOrder(r.Context(), domain.OrderRequest{
			ISBN:     body.ISBN,
			Quantity: body.Quantity,
		})
		if err != nil {
			if !domain.IsInvalidRequest(err) && !errors.Is(err, context.Canceled) {
				logger.WithError(err).WithField("isbn", body.ISBN).Error("submit order failed")
			}
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toOrderResponse(order))
	}
}

// HandleListOrders обрабатывает GET /orders.
func HandleListOrders(svc OrderService, logger *log.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.ListOrders(r.Context())
		if err != nil {
			logger.WithError(err).Error("list orders failed")
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponses(orders))
	}
}

// HandleGetOrder обрабатывает GET /orders/{id}.
func HandleGetOrder(svc OrderService, logger *log.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "order id must be an integer")
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			if !errors.Is(err, domain.ErrOrderNotFound) {
				logger.WithError(err).WithField("order_id", id).Error("get order failed")
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponse(order))
	}
}
