package kafka

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeOrderAccepted EventType = "order.accepted"
	EventTypeOrderRejected EventType = "order.rejected"
)

// TopicOrderEvents — topic по умолчанию для решений по заказам.
const TopicOrderEvents = "bookshop.order.events"

// OrderEvent сообщает о сохранённом решении по заказу.
type OrderEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	OrderID   string    `json:"order_id"`
	BookISBN  string    `json:"book_isbn"`
	Status    string    `json:"status"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent строит событие по сохранённому заказу.
func NewOrderEvent(order domain.Order) *OrderEvent {
	eventType := EventTypeOrderRejected
	if order.Status == domain.OrderStatusAccepted {
		eventType = EventTypeOrderAccepted
	}

	timestamp := order.LastModifiedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	return &OrderEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		OrderID:   strconv.FormatInt(order.ID, 10),
		BookISBN:  order.BookISBN,
		Status:    string(order.Status),
		Quantity:  order.Quantity,
		Timestamp: timestamp,
	}
}
