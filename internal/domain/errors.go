package domain

import "errors"

var (
	// ErrInvalidRequest — заявка на заказ некорректна (quantity < 1, пустой ISBN).
	ErrInvalidRequest = errors.New("invalid order request")
	// ErrDuplicateOrderID — в хранилище уже есть заказ с таким ID; перезапись запрещена.
	ErrDuplicateOrderID = errors.New("duplicate order id")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderInvariant — заказ нарушает связку статуса и полей книги.
	ErrOrderInvariant = errors.New("order invariant violated")
	// ErrBookNotFound — каталог явно ответил, что книги нет. Не повторяется.
	ErrBookNotFound = errors.New("book not found")
	// ErrCatalogUnavailable — временная ошибка каталога, попытку можно повторить.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrCatalogTimeout — общий дедлайн запроса к каталогу истёк.
	ErrCatalogTimeout = errors.New("catalog timeout")
)

// IsInvalidRequest проверяет, является ли ошибка ошибкой валидации заявки.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsDuplicateOrderID проверяет, является ли ошибка коллизией идентификаторов.
func IsDuplicateOrderID(err error) bool {
	return errors.Is(err, ErrDuplicateOrderID)
}

// IsRetryableCatalogError сообщает, стоит ли повторять запрос к каталогу.
// Отсутствие книги и истёкший дедлайн повторять бессмысленно.
func IsRetryableCatalogError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrCatalogTimeout) {
		return false
	}
	return true
}
