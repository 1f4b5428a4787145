package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	// DefaultMaxConns — размер пула по умолчанию.
	DefaultMaxConns = 25

	defaultPingTimeout     = 5 * time.Second
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute

	ordersTable = "book_orders"
)

var (
	// ErrEmptyDSN возвращается Open без строки подключения.
	ErrEmptyDSN = errors.New("postgres dsn is empty")
	// ErrSchemaMissing — таблица заказов не создана, миграции не применялись.
	ErrSchemaMissing = errors.New("book_orders table is missing, run migrations")

	errStoreNotInitialized = errors.New("postgres store is not initialized")
)

// StoreOptions задаёт параметры пула подключений хранилища заказов.
type StoreOptions struct {
	MaxConns    int
	PingTimeout time.Duration
}

// StoreOption настраивает Store.
type StoreOption func(*StoreOptions)

// WithMaxConns ограничивает число открытых подключений; простаивающих держим столько же.
func WithMaxConns(n int) StoreOption {
	return func(opts *StoreOptions) {
		opts.MaxConns = n
	}
}

// WithPingTimeout ограничивает проверки доступности базы.
func WithPingTimeout(timeout time.Duration) StoreOption {
	return func(opts *StoreOptions) {
		opts.PingTimeout = timeout
	}
}

// Store хранит пул подключений к базе заказов книг (драйвер pgx).
type Store struct {
	db          *sql.DB
	pingTimeout time.Duration
}

// Open подключается к базе заказов и проверяет, что она отвечает.
// Наличие схемы Open не проверяет: её может создать MigrateUp.
func Open(ctx context.Context, dsn string, options ...StoreOption) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}

	opts := StoreOptions{
		MaxConns:    DefaultMaxConns,
		PingTimeout: defaultPingTimeout,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.MaxConns <= 0 {
		opts.MaxConns = DefaultMaxConns
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = defaultPingTimeout
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open book orders database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxConns)
	db.SetMaxIdleConns(opts.MaxConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	store := &Store{db: db, pingTimeout: opts.PingTimeout}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping book orders database: %w", err)
	}

	return store, nil
}

// DB возвращает пул для репозитория и миграций.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет только подключение.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// CheckSchema убеждается, что таблица book_orders существует.
func (s *Store) CheckSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	var table sql.NullString
	if err := s.db.QueryRowContext(checkCtx, `SELECT to_regclass($1)::text`, ordersTable).Scan(&table); err != nil {
		return fmt.Errorf("check %s table: %w", ordersTable, err)
	}
	if !table.Valid {
		return ErrSchemaMissing
	}
	return nil
}

// Ready используется readiness-проверкой: база отвечает и схема на месте.
func (s *Store) Ready(ctx context.Context) error {
	if err := s.Ping(ctx); err != nil {
		return err
	}
	return s.CheckSchema(ctx)
}

// Close закрывает пул подключений.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
