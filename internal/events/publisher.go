package events

import (
	"context"
	"fmt"
	"log/slog"

	"records-service/common/metrics"
	"records-service/internal/config"
)

// Publisher delivers domain events to a broker. Key groups related events
// (the student's internal id) so consumers can keep per-record ordering.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// New builds the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, m *metrics.Metrics, logger *slog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case "nats":
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, m, logger)
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, m, logger)
	case "", "none":
		logger.Info("event publishing disabled")
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

func (Noop) Close() error { return nil }
