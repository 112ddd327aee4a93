package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON, text or raw payloads to Kafka topics.
type Producer struct {
	writer messageWriter
	comp   string
}

// NewProducer validates the options and creates a writer for the brokers.
// Topics are chosen per message.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	codec, _ := parseCompression(cfg.Compression)

	var bal kafka.Balancer = &kafka.LeastBytes{}
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  codec,
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
		Transport:    &kafka.Transport{ClientID: cfg.ClientID},
	}
	return newProducer(w, cfg.Compression), nil
}

func newProducer(w messageWriter, compression string) *Producer {
	initProducerMetricsOnce()
	if compression == "" {
		compression = "none"
	}
	return &Producer{writer: w, comp: compression}
}

// Publish sends value to topic under key.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	start := time.Now()
	v, contentType, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   v,
		Time:    start,
		Headers: []kafka.Header{{Key: "content-type", Value: []byte(contentType)}},
	})
	observePublish(topic, p.comp, len(v), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishMessage publishes an unkeyed payload. It satisfies logger.Publisher.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, nil, payload)
}

// Close flushes pending async writes and closes the writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encodeValue(value interface{}) ([]byte, string, error) {
	switch val := value.(type) {
	case []byte:
		return val, "application/octet-stream", nil
	case string:
		return []byte(val), "text/plain", nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, "", fmt.Errorf("marshal value: %w", err)
	}
	return b, "application/json", nil
}

var (
	producerMessages *prometheus.CounterVec
	producerBytes    *prometheus.CounterVec
	producerLatency  *prometheus.HistogramVec
	producerOnce     sync.Once
)

func initProducerMetricsOnce() {
	producerOnce.Do(func() {
		producerMessages = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openfof_kafka_producer_messages_total",
				Help: "Messages published to Kafka by topic and result",
			},
			[]string{"topic", "compression", "result"},
		)
		producerBytes = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openfof_kafka_producer_bytes_total",
				Help: "Payload bytes published to Kafka",
			},
			[]string{"topic", "compression"},
		)
		producerLatency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "openfof_kafka_producer_publish_seconds",
				Help:    "Publish latency including broker acknowledgement",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 10},
			},
			[]string{"topic"},
		)
	})
}

func observePublish(topic, comp string, size int, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMessages.WithLabelValues(topic, comp, result).Inc()
	if err == nil {
		producerBytes.WithLabelValues(topic, comp).Add(float64(size))
	}
	producerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
