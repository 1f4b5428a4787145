package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	defaultTimeout     = 3 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 100 * time.Millisecond
	defaultBackoffMax  = 2 * time.Second
)

// Config задаёт параметры обращения к каталогу книг.
type Config struct {
	// BaseURL — адрес каталога, например http://catalog-service:9001.
	BaseURL string
	// Timeout — общий дедлайн поиска книги с момента первого запроса, включая retry.
	Timeout time.Duration
	// MaxRetries — число дополнительных попыток после первой.
	MaxRetries int
	// BackoffBase — задержка перед первой повторной попыткой.
	BackoffBase time.Duration
	// BackoffMax ограничивает рост задержки.
	BackoffMax time.Duration
	// Jitter — доля случайного разброса задержки в диапазоне [0, 1).
	Jitter float64
}

// DefaultConfig возвращает таймаут 3s, 3 повторные попытки и backoff от 100ms.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:9001",
		Timeout:     defaultTimeout,
		MaxRetries:  defaultMaxRetries,
		BackoffBase: defaultBackoffBase,
		BackoffMax:  defaultBackoffMax,
	}
}

// Validate проверяет конфигурацию перед запуском.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("catalog base url %q must be an absolute http(s) url", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("catalog timeout must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("catalog max retries must be non-negative"))
	}
	if c.BackoffBase < 0 {
		errs = append(errs, errors.New("catalog backoff base must be non-negative"))
	}
	if c.BackoffMax > 0 && c.BackoffMax < c.BackoffBase {
		errs = append(errs, errors.New("catalog backoff max must not be less than backoff base"))
	}
	if c.Jitter < 0 || c.Jitter >= 1 {
		errs = append(errs, errors.New("catalog jitter must be in [0, 1)"))
	}
	return errors.Join(errs...)
}
