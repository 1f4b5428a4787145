package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
)

// waitFunc ждёт d или отмены ctx.
type waitFunc func(ctx context.Context, d time.Duration) error

// GatewayOptions задаёт зависимости Gateway.
type GatewayOptions struct {
	Logger  *log.Entry
	Metrics *metrics.CatalogMetrics
}

// Option настраивает Gateway.
type Option func(*GatewayOptions)

// WithLogger задаёт logger для gateway.
func WithLogger(logger *log.Entry) Option {
	return func(opts *GatewayOptions) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики обращений к каталогу.
func WithMetrics(m *metrics.CatalogMetrics) Option {
	return func(opts *GatewayOptions) {
		opts.Metrics = m
	}
}

// Gateway реализует domain.CatalogGateway поверх Fetcher. Безопасен для конкурентного использования.
type Gateway struct {
	fetcher    Fetcher
	timeout    time.Duration
	maxRetries int
	backoff    Backoff
	wait       waitFunc
	logger     *log.Entry
	metrics    *metrics.CatalogMetrics
}

// NewGateway создаёт gateway поверх Fetcher.
func NewGateway(fetcher Fetcher, cfg Config, options ...Option) *Gateway {
	opts := GatewayOptions{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "catalog-gateway")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Gateway{
		fetcher:    fetcher,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    NewBackoff(cfg),
		wait:       sleepContext,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// FetchBook ищет книгу по ISBN. Ошибки наружу не выходят: при 404, таймауте,
// исчерпании попыток или отмене ctx возвращается found=false.
func (g *Gateway) FetchBook(ctx context.Context, isbn string) (domain.BookInfo, bool) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	logger := g.logger.WithField("isbn", isbn)
	logger.Debug("retrieving book from catalog")

	book, attempts, err := g.lookup(ctx, isbn)
	elapsed := time.Since(start)
	if err == nil {
		g.metrics.RecordLookup(metrics.LookupFound, elapsed)
		logger.WithField("attempts", attempts).Debug("book retrieved")
		return book, true
	}

	result := lookupResult(err)
	g.metrics.RecordLookup(result, elapsed)

	entry := logger.WithError(err).WithFields(log.Fields{
		"attempts": attempts,
		"result":   result,
		"elapsed":  elapsed,
	})
	if result == metrics.LookupNotFound {
		entry.Info("book not found in catalog")
	} else {
		entry.Warn("catalog lookup failed, treating book as unavailable")
	}
	return domain.BookInfo{}, false
}

// lookup — цикл попыток: запрос, классификация ошибки, проверка бюджета, ожидание.
// Возвращает число выполненных попыток.
func (g *Gateway) lookup(ctx context.Context, isbn string) (domain.BookInfo, int, error) {
	maxAttempts := g.maxRetries + 1

	for attempt := 1; ; attempt++ {
		book, err := g.fetcher.FetchBook(ctx, isbn)
		if err == nil {
			g.metrics.RecordAttempt(metrics.AttemptOK)
			return book, attempt, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			g.metrics.RecordAttempt(metrics.AttemptError)
			return domain.BookInfo{}, attempt, contextError(ctxErr, err)
		}

		if errors.Is(err, domain.ErrBookNotFound) {
			g.metrics.RecordAttempt(metrics.AttemptNotFound)
			return domain.BookInfo{}, attempt, err
		}
		g.metrics.RecordAttempt(metrics.AttemptError)

		if !domain.IsRetryableCatalogError(err) {
			return domain.BookInfo{}, attempt, err
		}
		if attempt >= maxAttempts {
			return domain.BookInfo{}, attempt, fmt.Errorf("retries exhausted after %d attempts: %w", attempt, err)
		}

		delay := g.backoff.Delay(attempt)
		g.logger.WithError(err).WithFields(log.Fields{
			"isbn":    isbn,
			"attempt": attempt,
			"delay":   delay,
		}).Debug("catalog request failed, retrying")

		if waitErr := g.wait(ctx, delay); waitErr != nil {
			return domain.BookInfo{}, attempt, contextError(waitErr, err)
		}
	}
}

// contextError переводит истечение дедлайна в ErrCatalogTimeout, отмену оставляет как есть.
func contextError(ctxErr, lastErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: last error: %v", domain.ErrCatalogTimeout, lastErr)
	}
	return fmt.Errorf("catalog lookup aborted: %w", ctxErr)
}

func lookupResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		return metrics.LookupNotFound
	case errors.Is(err, domain.ErrCatalogTimeout):
		return metrics.LookupTimeout
	case errors.Is(err, context.Canceled):
		return metrics.LookupCanceled
	default:
		return metrics.LookupExhausted
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.CatalogGateway = (*Gateway)(nil)
