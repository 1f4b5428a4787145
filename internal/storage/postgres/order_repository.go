package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	selectOrderColumns = `
		SELECT id, book_isbn, book_name, book_price, quantity, status,
		       created_at, last_modified_at, version
		FROM book_orders
	`
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Insert(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	name := sql.NullString{}
	if order.BookName != nil {
		name = sql.NullString{String: *order.BookName, Valid: true}
	}
	price := decimal.NullDecimal{}
	if order.BookPrice != nil {
		price = decimal.NullDecimal{Decimal: *order.BookPrice, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO book_orders (
			id, book_isbn, book_name, book_price, quantity, status,
			created_at, last_modified_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		order.ID, order.BookISBN, name, price, order.Quantity, string(order.Status),
		order.CreatedAt, order.LastModifiedAt, order.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order %d: %w", order.ID, domain.ErrDuplicateOrderID)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *orderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, selectOrderColumns+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrderColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		name   sql.NullString
		price  decimal.NullDecimal
		status string
	)
	if err := row.Scan(
		&order.ID, &order.BookISBN, &name, &price, &order.Quantity, &status,
		&order.CreatedAt, &order.LastModifiedAt, &order.Version,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scan order row: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	if name.Valid {
		order.BookName = &name.String
	}
	if price.Valid {
		order.BookPrice = &price.Decimal
	}
	order.CreatedAt = order.CreatedAt.UTC()
	order.LastModifiedAt = order.LastModifiedAt.UTC()

	return order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
