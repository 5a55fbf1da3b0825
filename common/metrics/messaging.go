package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type MessagingMetrics struct {
	messagesPublished metric.Int64Counter
	messageErrors     metric.Int64Counter
	connectionsActive metric.Int64UpDownCounter
	publishDuration   metric.Float64Histogram
}

func NewMessagingMetrics(meter metric.Meter) (*MessagingMetrics, error) {
	mm := &MessagingMetrics{}

	var err error

	mm.messagesPublished, err = meter.Int64Counter(
		"messaging.messages.published",
		metric.WithDescription("Total number of messages published"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	// Publishing is a network hop, so the buckets start at 100µs.
	mm.publishDuration, err = meter.Float64Histogram(
		"messaging.message.publish_duration",
		metric.WithDescription("Time spent publishing a message"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		return nil, err
	}

	mm.messageErrors, err = meter.Int64Counter(
		"messaging.message.errors",
		metric.WithDescription("Total number of message publish errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	mm.connectionsActive, err = meter.Int64UpDownCounter(
		"messaging.connections.active",
		metric.WithDescription("Current number of active messaging connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	return mm, nil
}

// RecordPublish counts one publish attempt. system is the broker kind ("nats", "kafka").
func (mm *MessagingMetrics) RecordPublish(ctx context.Context, system, destination string, duration time.Duration, err error) {
	if mm == nil || mm.messagesPublished == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("messaging.system", system),
		attribute.String("destination", destination),
		attribute.Bool("success", err == nil),
	)

	mm.messagesPublished.Add(ctx, 1, attrs)
	mm.publishDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		mm.messageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("messaging.system", system),
			attribute.String("destination", destination),
		))
	}
}

func (mm *MessagingMetrics) RecordConnectionChange(ctx context.Context, system string, delta int64) {
	if mm == nil || mm.connectionsActive == nil {
		return
	}
	mm.connectionsActive.Add(ctx, delta, metric.WithAttributes(attribute.String("messaging.system", system)))
}
