package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidRequest     = "invalid_request"
	codeInvalidID          = "invalid_id"
	codeOrderNotFound      = "order_not_found"
	codeDuplicateOrderID   = "duplicate_order_id"
	codeRequestCanceled    = "request_canceled"
	codeRequestTimeout     = "request_timeout"
	codeInternalError      = "internal_error"
)

// statusClientClosedRequest — нестандартный код nginx для закрытого клиентом соединения.
const statusClientClosedRequest = 499

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsInvalidRequest(err):
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case domain.IsDuplicateOrderID(err):
		writeError(w, http.StatusConflict, codeDuplicateOrderID, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, statusClientClosedRequest, codeRequestCanceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, codeRequestTimeout, "request timed out")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
