package kafka

import (
	"fmt"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

// OrderEventPublisher публикует решения по заказам в Kafka topic.
type OrderEventPublisher struct {
	producer *Producer
	topic    string
}

// NewOrderEventPublisher создаёт паблишер; пустой topic заменяется TopicOrderEvents.
func NewOrderEventPublisher(producer *Producer, topic string) *OrderEventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

// PublishOrderAdmitted строит событие по заказу и отправляет его один раз.
func (p *OrderEventPublisher) PublishOrderAdmitted(order domain.Order) error {
	return p.PublishOrderEvent(NewOrderEvent(order))
}

// PublishOrderEvent отправляет готовое событие с ключом order id, чтобы события
// одного заказа попадали в одну партицию. Повторная отправка того же события
// сохраняет event_id, по нему потребители отбрасывают дубликаты.
func (p *OrderEventPublisher) PublishOrderEvent(event *OrderEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka order publisher is not initialized")
	}
	if event == nil {
		return fmt.Errorf("order event is nil")
	}

	return p.producer.PublishEvent(p.topic, event.OrderID, event)
}

// NoopPublisher используется, когда Kafka не настроена.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderAdmitted(domain.Order) error { return nil }

var (
	_ domain.OrderEventPublisher = (*OrderEventPublisher)(nil)
	_ domain.OrderEventPublisher = NoopPublisher{}
)
