package repository

import (
	"context"

	"StockCast/internal/domain/models"
)

type kafkaProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaForecastPublisher implements ForecastPublisher for Kafka. Events are
// keyed by symbol so one ticker's forecasts stay on one partition.
type KafkaForecastPublisher struct {
	producer kafkaProducer
	topic    string
}

// NewKafkaForecastPublisher creates Kafka publisher.
func NewKafkaForecastPublisher(producer kafkaProducer, topic string) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: producer, topic: topic}
}

func (p *KafkaForecastPublisher) PublishForecast(ctx context.Context, ev models.ForecastEvent) error {
	if ev.EventType == "" {
		ev.EventType = models.EventForecastCreated
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

func (p *KafkaForecastPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
