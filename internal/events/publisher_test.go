package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"records-service/common/logger"
	"records-service/common/metrics"
	"records-service/internal/config"
	"records-service/internal/events"
	"records-service/testing/testnats"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func TestNew(t *testing.T) {
	t.Run("NoneDriver", func(t *testing.T) {
		p, err := events.New(config.EventsConfig{Driver: "none"}, metrics.NewMock(), logger.Discard())
		require.NoError(t, err)
		assert.IsType(t, events.Noop{}, p)
		assert.NoError(t, p.Publish(context.Background(), "k", testEvent{}))
		assert.NoError(t, p.Close())
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := events.New(config.EventsConfig{Driver: "carrier-pigeon"}, metrics.NewMock(), logger.Discard())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "carrier-pigeon")
	})
}

func TestKafkaPublisher(t *testing.T) {
	t.Run("Publish_Success", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.NewProducerConfig())
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var got testEvent
			if err := json.Unmarshal(val, &got); err != nil {
				return err
			}
			if got.Type != "student.created" || got.ID != "abc" {
				return errors.New("unexpected payload: " + string(val))
			}
			return nil
		})

		p := events.NewKafkaPublisherWithProducer(producer, "students", metrics.NewMock(), logger.Discard())
		err := p.Publish(context.Background(), "abc", testEvent{Type: "student.created", ID: "abc"})
		require.NoError(t, err)
		require.NoError(t, p.Close())
	})

	t.Run("Publish_BrokerError", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.NewProducerConfig())
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		p := events.NewKafkaPublisherWithProducer(producer, "students", metrics.NewMock(), logger.Discard())
		err := p.Publish(context.Background(), "abc", testEvent{Type: "student.deleted"})
		require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, p.Close())
	})

	t.Run("Publish_Unmarshalable", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.NewProducerConfig())

		p := events.NewKafkaPublisherWithProducer(producer, "students", metrics.NewMock(), logger.Discard())
		err := p.Publish(context.Background(), "abc", make(chan int))
		require.Error(t, err)
		require.NoError(t, p.Close())
	})
}

func TestNATSPublisher_Shared(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	t.Run("Publish_Delivers", func(t *testing.T) {
		subject := "test.students." + strings.ReplaceAll(t.Name(), "/", ".")
		nc := natsContainer.Connect(t)

		received := make(chan *nats.Msg, 1)
		_, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			received <- msg
		})
		require.NoError(t, err)
		require.NoError(t, nc.Flush())

		p, err := events.NewNATSPublisher(natsContainer.URL, subject, metrics.NewMock(), logger.Discard())
		require.NoError(t, err)
		defer p.Close()

		require.NoError(t, p.Publish(context.Background(), "id-1", testEvent{Type: "student.updated", ID: "id-1"}))

		select {
		case msg := <-received:
			assert.Equal(t, "id-1", msg.Header.Get(events.KeyHeader))
			var got testEvent
			require.NoError(t, json.Unmarshal(msg.Data, &got))
			assert.Equal(t, "student.updated", got.Type)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for event")
		}
	})

	t.Run("NewFromConfig", func(t *testing.T) {
		p, err := events.New(config.EventsConfig{
			Driver: "nats",
			NATS:   config.NATSConfig{URL: natsContainer.URL, Subject: "test.students.config"},
		}, metrics.NewMock(), logger.Discard())
		require.NoError(t, err)
		assert.IsType(t, &events.NATSPublisher{}, p)
		assert.NoError(t, p.Close())
	})
}
