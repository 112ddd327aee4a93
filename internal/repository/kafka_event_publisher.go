package repository

import (
	"context"

	"OpenFOF/internal/domain/models"
	pkgkafka "OpenFOF/pkg/kafka"
)

// KafkaEventPublisher publishes analytics events keyed by query name.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a publisher writing to topic.
func NewKafkaEventPublisher(p *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, topic: topic}
}

func (k *KafkaEventPublisher) PublishAnalyticsEvent(ctx context.Context, evt models.AnalyticsEvent) error {
	return k.producer.Publish(ctx, k.topic, []byte(evt.Query), evt)
}
