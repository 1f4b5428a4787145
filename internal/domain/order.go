package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает итоговое решение по заказу. Оба значения терминальные.
type OrderStatus string

const (
	// OrderStatusAccepted — книга подтверждена каталогом, заказ принят.
	OrderStatusAccepted OrderStatus = "ACCEPTED"
	// OrderStatusRejected — книгу подтвердить не удалось, заказ отклонён.
	OrderStatusRejected OrderStatus = "REJECTED"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusAccepted, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal сообщает, что статус больше не меняется.
func (s OrderStatus) IsTerminal() bool {
	return s.Valid()
}

// BookInfo — данные книги, полученные из каталога.
type BookInfo struct {
	ISBN   string
	Title  string
	Author string
	Price  decimal.Decimal
}

// DisplayName формирует название позиции заказа: "<title> - <author>".
func (b BookInfo) DisplayName() string {
	return b.Title + " - " + b.Author
}

// OrderRequest — входные данные для оформления заказа. Не сохраняется.
type OrderRequest struct {
	ISBN     string
	Quantity int
}

// Validate проверяет заявку до обращения к каталогу.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.ISBN) == "" {
		return fmt.Errorf("isbn is required: %w", ErrInvalidRequest)
	}
	if r.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d: %w", r.Quantity, ErrInvalidRequest)
	}
	return nil
}

// Order — заказ в терминальном статусе. После сохранения не изменяется.
type Order struct {
	ID       int64
	BookISBN string
	// BookName и BookPrice заполнены только для принятых заказов.
	BookName       *string
	BookPrice      *decimal.Decimal
	Quantity       int
	Status         OrderStatus
	CreatedAt      time.Time
	LastModifiedAt time.Time
	Version        int
}

// ValidateInvariants проверяет связку статуса и полей книги и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if !o.Status.Valid() {
		errs = append(errs, fmt.Errorf("unknown status %q: %w", o.Status, ErrOrderInvariant))
	}
	if o.Quantity < 1 {
		errs = append(errs, fmt.Errorf("quantity %d: %w", o.Quantity, ErrOrderInvariant))
	}

	switch o.Status {
	case OrderStatusAccepted:
		if o.BookName == nil || o.BookPrice == nil {
			errs = append(errs, fmt.Errorf("accepted order without book name or price: %w", ErrOrderInvariant))
		}
	case OrderStatusRejected:
		if o.BookName != nil || o.BookPrice != nil {
			errs = append(errs, fmt.Errorf("rejected order with book name or price: %w", ErrOrderInvariant))
		}
	}

	return errs
}

// Clone возвращает глубокую копию, чтобы хранилище не делило указатели с вызывающим.
func (o Order) Clone() Order {
	if o.BookName != nil {
		name := *o.BookName
		o.BookName = &name
	}
	if o.BookPrice != nil {
		price := *o.BookPrice
		o.BookPrice = &price
	}
	return o
}
