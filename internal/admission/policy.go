package admission

import "github.com/vladislavdragonenkov/bookorders/internal/domain"

// Policy решает, какой статус получит заказ по итогам поиска книги.
// Недоступность каталога до политики не доходит: для неё это просто found=false.
type Policy interface {
	Admit(req domain.OrderRequest, book domain.BookInfo, found bool) domain.OrderStatus
}

// PolicyFunc адаптирует функцию к Policy.
type PolicyFunc func(req domain.OrderRequest, book domain.BookInfo, found bool) domain.OrderStatus

// Admit вызывает f.
func (f PolicyFunc) Admit(req domain.OrderRequest, book domain.BookInfo, found bool) domain.OrderStatus {
	return f(req, book, found)
}

// RejectUnavailable — правило по умолчанию: книгу не подтвердили, значит заказ отклонён.
type RejectUnavailable struct{}

// Admit принимает заказ только при найденной книге.
func (RejectUnavailable) Admit(_ domain.OrderRequest, _ domain.BookInfo, found bool) domain.OrderStatus {
	if found {
		return domain.OrderStatusAccepted
	}
	return domain.OrderStatusRejected
}

var _ Policy = RejectUnavailable{}
