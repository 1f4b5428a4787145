package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
	"github.com/vladislavdragonenkov/bookorders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
	"github.com/vladislavdragonenkov/bookorders/internal/service/events"
)

// eventPipeline — публикация событий о заказах. dispatcher и producer равны nil,
// когда Kafka не используется.
type eventPipeline struct {
	publisher  domain.OrderEventPublisher
	dispatcher *events.Dispatcher
	producer   *kafka.Producer
}

// initPublisher подключает Kafka, если заданы брокеры. Недоступный брокер
// не мешает запуску: события просто не публикуются.
func initPublisher(brokers []string, topic string, logger *log.Entry) eventPipeline {
	if len(brokers) == 0 {
		logger.Info("kafka brokers are not configured, order events are disabled")
		return eventPipeline{publisher: kafka.NoopPublisher{}}
	}

	producer, err := kafka.NewProducer(brokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return eventPipeline{publisher: kafka.NoopPublisher{}}
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	dispatcher := events.NewDispatcher(kafka.NewOrderEventPublisher(producer, topic),
		events.WithLogger(logger.WithField("component", "event-dispatcher")),
		events.WithMetrics(metrics.NewEventMetrics()),
	)
	return eventPipeline{
		publisher:  dispatcher,
		dispatcher: dispatcher,
		producer:   producer,
	}
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
