package admission

import (
	"github.com/vladislavdragonenkov/bookorders/internal/clock"
	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

// Engine превращает заявку и результат поиска книги в заказ в терминальном статусе.
// Ввода-вывода нет: время и идентификаторы приходят из инжектируемых зависимостей.
type Engine struct {
	policy Policy
	ids    domain.IDGenerator
	clock  clock.Clock
}

// Option настраивает Engine.
type Option func(*Engine)

// WithPolicy подменяет правило допуска заказа.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// WithClock задаёт источник времени.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine создаёт движок допуска. Без опций: RejectUnavailable и системные часы.
func NewEngine(ids domain.IDGenerator, options ...Option) *Engine {
	e := &Engine{
		policy: RejectUnavailable{},
		ids:    ids,
		clock:  clock.NewSystem(),
	}
	for _, option := range options {
		option(e)
	}
	if e.ids == nil {
		e.ids = NewSequenceGenerator()
	}
	return e
}

// Decide строит заказ. Данные книги попадают в заказ только при статусе ACCEPTED.
func (e *Engine) Decide(req domain.OrderRequest, book domain.BookInfo, found bool) domain.Order {
	now := e.clock.Now()
	order := domain.Order{
		ID:             e.ids.NextID(),
		BookISBN:       req.ISBN,
		Quantity:       req.Quantity,
		Status:         e.policy.Admit(req, book, found),
		CreatedAt:      now,
		LastModifiedAt: now,
		Version:        0,
	}

	// Политика может принять заказ только если книга реально есть,
	// иначе нарушится инвариант ACCEPTED => name/price.
	if order.Status == domain.OrderStatusAccepted && !found {
		order.Status = domain.OrderStatusRejected
	}

	if order.Status == domain.OrderStatusAccepted {
		name := book.DisplayName()
		price := book.Price
		order.BookName = &name
		order.BookPrice = &price
		if book.ISBN != "" {
			order.BookISBN = book.ISBN
		}
	}

	return order
}
