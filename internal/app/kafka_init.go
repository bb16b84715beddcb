package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/messaging/kafka"
)

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой или если произошла ошибка.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
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

// loggingPublisher — publisher на случай, когда Kafka не настроен:
// события outbox уходят в лог и помечаются отправленными.
type loggingPublisher struct {
	logger *log.Entry
}

var _ domain.OutboxPublisher = (*loggingPublisher)(nil)

func (p *loggingPublisher) Publish(event domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID,
	}).Info("outbox event (kafka disabled)")
	return nil
}
