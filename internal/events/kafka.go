package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"records-service/common/metrics"

	"github.com/IBM/sarama"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewProducerConfig returns the sarama settings used for event publishing.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "records-service"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return config
}

func NewKafkaPublisher(brokers []string, topic string, m *metrics.Metrics, logger *slog.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	m.Messaging.RecordConnectionChange(context.Background(), "kafka", 1)
	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return NewKafkaPublisherWithProducer(producer, topic, m, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		metrics:  m,
		logger:   logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	start := time.Now()

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.Messaging.RecordPublish(ctx, "kafka", p.topic, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send event to kafka", "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "key", key)
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.metrics.Messaging.RecordConnectionChange(context.Background(), "kafka", -1)
	return p.producer.Close()
}
