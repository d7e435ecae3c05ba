package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"resto-order-go/models"
)

const (
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
)

// Publisher announces order lifecycle changes to whoever is listening.
type Publisher interface {
	OrderPlaced(ctx context.Context, order models.Order, transaction models.Transaction) error
	OrderStatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus) error
	Close() error
}

type Event struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

type orderPlacedData struct {
	Order       models.Order       `json:"order"`
	Transaction models.Transaction `json:"transaction"`
}

type statusChangedData struct {
	Order          models.Order       `json:"order"`
	PreviousStatus models.OrderStatus `json:"previousStatus"`
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, models.Order, models.Transaction) error {
	return nil
}

func (NopPublisher) OrderStatusChanged(context.Context, models.Order, models.OrderStatus) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

// KafkaPublisher writes events to "<prefix>.order.placed" and
// "<prefix>.order.status_changed", keyed by order id.
type KafkaPublisher struct {
	producer    sarama.SyncProducer
	topicPrefix string
	now         func() time.Time
}

func NewKafkaPublisher(producer sarama.SyncProducer, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topicPrefix: topicPrefix, now: time.Now}
}

// NewProducerConfig builds a synchronous producer config whose sends give up
// within roughly timeout, so a broker outage cannot hold requests for long.
func NewProducerConfig(timeout time.Duration) *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Timeout = timeout
	config.Producer.Retry.Max = 1
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Net.DialTimeout = timeout
	config.Net.ReadTimeout = timeout
	config.Net.WriteTimeout = timeout
	config.Metadata.Retry.Max = 1
	config.Metadata.Timeout = timeout
	return config
}

// DialKafka connects a synchronous producer, retrying a few times while the
// broker comes up.
func DialKafka(brokers []string, timeout time.Duration, attempts int, backoff time.Duration) (sarama.SyncProducer, error) {
	config := NewProducerConfig(timeout)

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("Kafka producer connected to %v", brokers)
			return producer, nil
		}

		log.Printf("Failed to connect to Kafka (try %d/%d): %v", i, attempts, err)
		if i < attempts {
			time.Sleep(backoff)
		}
	}
	return nil, fmt.Errorf("connect to kafka %v: %w", brokers, err)
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, order models.Order, transaction models.Transaction) error {
	return p.publish(ctx, p.topicPrefix+".order.placed", order.ID, Event{
		EventType: EventOrderPlaced,
		Data:      orderPlacedData{Order: order, Transaction: transaction},
	})
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus) error {
	return p.publish(ctx, p.topicPrefix+".order.status_changed", order.ID, Event{
		EventType: EventOrderStatusChanged,
		Data:      statusChangedData{Order: order, PreviousStatus: previous},
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, topic string, orderID uint, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event.OccurredAt = p.now().UTC()
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(orderID), 10)),
		Value: sarama.ByteEncoder(messageBytes),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send %s event: %w", event.EventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
