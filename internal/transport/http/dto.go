package http

import (
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

type submitOrderRequest struct {
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

// orderResponse повторяет внешний формат заказа; для REJECTED имя и цена равны null.
type orderResponse struct {
	ID               int64        `json:"id"`
	BookISBN         string       `json:"bookIsbn"`
	BookName         *string      `json:"bookName"`
	BookPrice        *json.Number `json:"bookPrice"`
	Quantity         int          `json:"quantity"`
	Status           string       `json:"status"`
	CreatedDate      time.Time    `json:"createdDate"`
	LastModifiedDate time.Time    `json:"lastModifiedDate"`
	Version          int          `json:"version"`
}

func toOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		ID:               order.ID,
		BookISBN:         order.BookISBN,
		BookName:         order.BookName,
		Quantity:         order.Quantity,
		Status:           string(order.Status),
		CreatedDate:      order.CreatedAt,
		LastModifiedDate: order.LastModifiedAt,
		Version:          order.Version,
	}
	if order.BookPrice != nil {
		price := json.Number(order.BookPrice.String())
		resp.BookPrice = &price
	}
	return resp
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return out
}
