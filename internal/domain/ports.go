package domain

import "context"

// CatalogGateway ищет книгу во внешнем каталоге.
// Любая ошибка (таймаут, недоступность, 404) сворачивается в found=false.
type CatalogGateway interface {
	FetchBook(ctx context.Context, isbn string) (book BookInfo, found bool)
}

// IDGenerator выдаёт идентификаторы заказов.
type IDGenerator interface {
	NextID() int64
}

// OrderEventPublisher публикует факт принятия решения по заказу; должен быть идемпотентным.
type OrderEventPublisher interface {
	PublishOrderAdmitted(order Order) error
}
