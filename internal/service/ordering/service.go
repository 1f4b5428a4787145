package ordering

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/admission"
	"github.com/vladislavdragonenkov/bookorders/internal/domain"
	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
)

// ServiceOptions задаёт необязательные зависимости Service.
type ServiceOptions struct {
	Logger    *log.Entry
	Metrics   *metrics.OrderMetrics
	Publisher domain.OrderEventPublisher
}

// Option настраивает Service.
type Option func(*ServiceOptions)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *ServiceOptions) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики оформления заказов.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(opts *ServiceOptions) {
		opts.Metrics = m
	}
}

// WithPublisher задаёт публикацию событий о принятых решениях.
func WithPublisher(publisher domain.OrderEventPublisher) Option {
	return func(opts *ServiceOptions) {
		opts.Publisher = publisher
	}
}

// Service оформляет заказы: валидация, поиск книги, решение о допуске, сохранение.
type Service struct {
	catalog   domain.CatalogGateway
	engine    *admission.Engine
	repo      domain.OrderRepository
	publisher domain.OrderEventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
}

// NewService собирает сервис оформления заказов.
func NewService(catalog domain.CatalogGateway, engine *admission.Engine, repo domain.OrderRepository, options ...Option) *Service {
	opts := ServiceOptions{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}

	return &Service{
		catalog:   catalog,
		engine:    engine,
		repo:      repo,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// SubmitOrder оформляет заказ. Ошибки: domain.ErrInvalidRequest (до обращения к каталогу),
// domain.ErrDuplicateOrderID, ошибка контекста при отмене. Недоступность каталога ошибкой
// не является: заказ сохраняется со статусом REJECTED.
func (s *Service) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	done := s.metrics.TrackSubmit()
	defer done()

	logger := s.logger.WithFields(log.Fields{
		"isbn":     req.ISBN,
		"quantity": req.Quantity,
	})

	if err := req.Validate(); err != nil {
		s.metrics.RecordFailure(metrics.FailureInvalidRequest)
		logger.WithError(err).Debug("order request rejected by validation")
		return domain.Order{}, err
	}

	logger.Debug("submitting order")
	book, found := s.catalog.FetchBook(ctx, req.ISBN)

	// Отменённое оформление не оставляет следов в хранилище.
	if err := ctx.Err(); err != nil {
		s.metrics.RecordFailure(metrics.FailureCanceled)
		logger.WithError(err).Info("order submission canceled before storing")
		return domain.Order{}, err
	}

	order := s.engine.Decide(req, book, found)

	if err := s.repo.Insert(ctx, order); err != nil {
		reason := metrics.FailureStorage
		switch {
		case domain.IsDuplicateOrderID(err):
			reason = metrics.FailureDuplicateID
			logger.WithError(err).WithField("order_id", order.ID).Error("order id collision, id generator is broken")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			reason = metrics.FailureCanceled
			logger.WithError(err).Info("order submission canceled while storing")
		default:
			logger.WithError(err).WithField("order_id", order.ID).Error("failed to store order")
		}
		s.metrics.RecordFailure(reason)
		return domain.Order{}, err
	}

	s.metrics.RecordSubmitted(string(order.Status))
	logger.WithFields(log.Fields{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("order stored")

	s.publish(order, logger)
	return order, nil
}

// ListOrders возвращает снимок всех заказов.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("count", len(orders)).Debug("retrieved orders")
	return orders, nil
}

// GetOrder возвращает заказ по идентификатору или domain.ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// publish отправляет событие best-effort: сбой брокера не откатывает сохранённый заказ.
func (s *Service) publish(order domain.Order, logger *log.Entry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderAdmitted(order); err != nil {
		logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event")
	}
}
