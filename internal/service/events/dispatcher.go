package events

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
	"github.com/vladislavdragonenkov/bookorders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
)

// EventSender отправляет уже построенное событие о заказе.
type EventSender interface {
	PublishOrderEvent(event *kafka.OrderEvent) error
}

const (
	defaultQueueSize      = 1024
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
	defaultDrainTimeout   = 5 * time.Second
)

// DispatcherOptions задаёт параметры Dispatcher.
type DispatcherOptions struct {
	Logger         *log.Entry
	Metrics        *metrics.EventMetrics
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	DrainTimeout   time.Duration
}

// Option настраивает Dispatcher.
type Option func(*DispatcherOptions)

// WithLogger задаёт logger для диспетчера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *DispatcherOptions) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики публикации.
func WithMetrics(m *metrics.EventMetrics) Option {
	return func(opts *DispatcherOptions) {
		opts.Metrics = m
	}
}

// WithQueueSize задаёт ёмкость очереди событий.
func WithQueueSize(size int) Option {
	return func(opts *DispatcherOptions) {
		opts.QueueSize = size
	}
}

// WithMaxAttempts задаёт число попыток публикации одного события.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *DispatcherOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовую задержку exponential backoff между попытками.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *DispatcherOptions) {
		opts.RetryBaseDelay = delay
	}
}

// WithDrainTimeout ограничивает дообработку очереди после остановки.
func WithDrainTimeout(timeout time.Duration) Option {
	return func(opts *DispatcherOptions) {
		opts.DrainTimeout = timeout
	}
}

// Dispatcher отвязывает оформление заказа от брокера: PublishOrderAdmitted только
// ставит событие в очередь, а Run публикует его с повторами.
// Событие и его event_id создаются один раз при постановке в очередь, все
// попытки отправляют одно и то же событие.
// Переполненная очередь событие отбрасывает, заказ от этого не страдает.
type Dispatcher struct {
	publisher      EventSender
	queue          chan *kafka.OrderEvent
	logger         *log.Entry
	metrics        *metrics.EventMetrics
	maxAttempts    int
	retryBaseDelay time.Duration
	drainTimeout   time.Duration
}

// NewDispatcher создаёт диспетчер поверх синхронного publisher.
func NewDispatcher(publisher EventSender, options ...Option) *Dispatcher {
	opts := DispatcherOptions{
		QueueSize:      defaultQueueSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		DrainTimeout:   defaultDrainTimeout,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "event-dispatcher")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = defaultDrainTimeout
	}

	return &Dispatcher{
		publisher:      publisher,
		queue:          make(chan *kafka.OrderEvent, opts.QueueSize),
		logger:         logger,
		metrics:        opts.Metrics,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		drainTimeout:   opts.DrainTimeout,
	}
}

// PublishOrderAdmitted ставит событие в очередь и никогда не блокируется.
func (d *Dispatcher) PublishOrderAdmitted(order domain.Order) error {
	select {
	case d.queue <- kafka.NewOrderEvent(order):
		d.metrics.SetQueueDepth(len(d.queue))
		return nil
	default:
		d.metrics.RecordPublish(metrics.EventDropped)
		return fmt.Errorf("event queue is full (%d), order %d event dropped", cap(d.queue), order.ID)
	}
}

// Run публикует события до отмены ctx, затем дообрабатывает очередь не дольше drainTimeout.
func (d *Dispatcher) Run(ctx context.Context) {
	if d.publisher == nil {
		d.logger.Warn("event dispatcher is disabled: publisher is nil")
		return
	}

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case event := <-d.queue:
			d.metrics.SetQueueDepth(len(d.queue))
			d.deliver(ctx, event)
		}
	}
}

func (d *Dispatcher) drain() {
	drainCtx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	for {
		select {
		case <-drainCtx.Done():
			if left := len(d.queue); left > 0 {
				d.logger.WithField("pending", left).Warn("event queue not drained before shutdown")
			}
			return
		case event := <-d.queue:
			d.metrics.SetQueueDepth(len(d.queue))
			d.deliver(drainCtx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event *kafka.OrderEvent) {
	if err := d.publishWithRetry(ctx, event); err != nil {
		d.metrics.RecordPublish(metrics.EventFailed)
		d.logger.WithError(err).WithFields(log.Fields{
			"event_id": event.EventID,
			"order_id": event.OrderID,
			"status":   event.Status,
		}).Error("order event publish failed after retries")
	}
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, event *kafka.OrderEvent) error {
	var lastErr error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.publisher.PublishOrderEvent(event)
		if err == nil {
			d.metrics.RecordPublish(metrics.EventSent)
			return nil
		}
		lastErr = err
		d.metrics.RecordPublish(metrics.EventRetryError)

		if attempt >= d.maxAttempts {
			break
		}

		delay := d.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", d.maxAttempts, lastErr)
}

func (d *Dispatcher) retryBackoff(attempt int) time.Duration {
	if d.retryBaseDelay <= 0 {
		return 0
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := d.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

var (
	_ domain.OrderEventPublisher = (*Dispatcher)(nil)
	_ EventSender                = (*kafka.OrderEventPublisher)(nil)
)
