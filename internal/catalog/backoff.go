package catalog

import (
	"math/rand/v2"
	"time"
)

// Backoff вычисляет задержку перед повторной попыткой.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
	// rnd возвращает число в [0, 1); подменяется в тестах.
	rnd func() float64
}

// NewBackoff создаёт экспоненциальный backoff из конфигурации.
func NewBackoff(cfg Config) Backoff {
	return Backoff{
		Base:   cfg.BackoffBase,
		Max:    cfg.BackoffMax,
		Jitter: cfg.Jitter,
		rnd:    rand.Float64,
	}
}

// Delay возвращает задержку перед retry-ой попыткой с номером retry (начиная с 1):
// Base, 2*Base, 4*Base, ... не больше Max.
func (b Backoff) Delay(retry int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	if retry < 1 {
		retry = 1
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := b.Base
	for i := 1; i < retry; i++ {
		if delay > maxDuration/2 {
			delay = maxDuration
			break
		}
		delay *= 2
	}
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}

	if b.Jitter > 0 && b.rnd != nil {
		// Симметричный разброс: delay * (1 ± jitter).
		spread := (b.rnd()*2 - 1) * b.Jitter
		delay = time.Duration(float64(delay) * (1 + spread))
	}
	return delay
}
