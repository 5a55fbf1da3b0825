package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"records-service/common/metrics"

	"github.com/nats-io/nats.go"
)

// KeyHeader carries the event key on NATS messages.
const KeyHeader = "Event-Key"

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewNATSPublisher(url, subject string, m *metrics.Metrics, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("records-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	m.Messaging.RecordConnectionChange(context.Background(), "nats", 1)
	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		metrics: m,
		logger:  logger,
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, key string, event any) error {
	start := time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := nats.NewMsg(p.subject)
	msg.Header.Set(KeyHeader, key)
	msg.Data = data

	err = p.conn.PublishMsg(msg)
	p.metrics.Messaging.RecordPublish(ctx, "nats", p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event published to NATS", "subject", p.subject, "key", key)
	return nil
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
	p.metrics.Messaging.RecordConnectionChange(context.Background(), "nats", -1)
	return nil
}
