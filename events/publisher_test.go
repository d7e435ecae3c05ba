package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resto-order-go/models"
)

var occurredAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestPublisher(t *testing.T) (*KafkaPublisher, *mocks.SyncProducer) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewKafkaPublisher(producer, "resto")
	publisher.now = func() time.Time { return occurredAt }
	return publisher, producer
}

func TestKafkaPublisherOrderPlaced(t *testing.T) {
	publisher, producer := newTestPublisher(t)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "resto.order.placed", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "7", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)

		var event struct {
			EventType  string    `json:"event_type"`
			OccurredAt time.Time `json:"occurred_at"`
			Data       struct {
				Order       models.Order       `json:"order"`
				Transaction models.Transaction `json:"transaction"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(value, &event))
		assert.Equal(t, EventOrderPlaced, event.EventType)
		assert.True(t, occurredAt.Equal(event.OccurredAt))
		assert.Equal(t, uint(7), event.Data.Order.ID)
		assert.Equal(t, int64(50000), event.Data.Transaction.Amount)
		return nil
	})

	err := publisher.OrderPlaced(context.Background(),
		models.Order{ID: 7, TotalAmount: 50000, Status: models.OrderStatusPending},
		models.Transaction{ID: 1, OrderID: 7, Amount: 50000, Status: models.TransactionStatusCompleted},
	)
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherStatusChanged(t *testing.T) {
	publisher, producer := newTestPublisher(t)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event map[string]interface{}
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		data := event["data"].(map[string]interface{})
		assert.Equal(t, EventOrderStatusChanged, event["event_type"])
		assert.Equal(t, "pending", data["previousStatus"])
		assert.Equal(t, "confirmed", data["order"].(map[string]interface{})["status"])
		return nil
	})

	err := publisher.OrderStatusChanged(context.Background(),
		models.Order{ID: 3, Status: models.OrderStatusConfirmed},
		models.OrderStatusPending,
	)
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherSendFailure(t *testing.T) {
	publisher, producer := newTestPublisher(t)

	brokerDown := errors.New("broker down")
	producer.ExpectSendMessageAndFail(brokerDown)

	err := publisher.OrderPlaced(context.Background(), models.Order{ID: 1}, models.Transaction{ID: 1})
	assert.ErrorIs(t, err, brokerDown)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherCanceledContext(t *testing.T) {
	publisher, _ := newTestPublisher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.OrderPlaced(ctx, models.Order{ID: 1}, models.Transaction{ID: 1})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, publisher.Close())
}

func TestNopPublisher(t *testing.T) {
	var publisher Publisher = NopPublisher{}

	assert.NoError(t, publisher.OrderPlaced(context.Background(), models.Order{}, models.Transaction{}))
	assert.NoError(t, publisher.OrderStatusChanged(context.Background(), models.Order{}, models.OrderStatusPending))
	assert.NoError(t, publisher.Close())
}

func TestNewProducerConfigBoundsSends(t *testing.T) {
	config := NewProducerConfig(2 * time.Second)

	require.NoError(t, config.Validate())
	assert.True(t, config.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
	assert.Equal(t, 1, config.Producer.Retry.Max)
	assert.Equal(t, 2*time.Second, config.Producer.Timeout)
	assert.Equal(t, 2*time.Second, config.Net.DialTimeout)
	assert.Equal(t, 2*time.Second, config.Net.WriteTimeout)
	assert.Equal(t, 2*time.Second, config.Net.ReadTimeout)
	assert.Equal(t, 1, config.Metadata.Retry.Max)
}
