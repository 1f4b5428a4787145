package domain

import "context"

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Insert сохраняет новый заказ. Возвращает ErrDuplicateOrderID, если ID уже занят.
	Insert(ctx context.Context, order Order) error
	// ListAll возвращает снимок всех заказов на момент вызова.
	ListAll(ctx context.Context) ([]Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id int64) (Order, error)
}
