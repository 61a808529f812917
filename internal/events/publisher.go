package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// BidEvent is emitted after a bid transition has been persisted.
type BidEvent struct {
	Type           string    `json:"type"`
	BidID          uuid.UUID `json:"bid_id"`
	SlotID         uuid.UUID `json:"slot_id"`
	CounterpartyID uuid.UUID `json:"counterparty_id"`
	ActorID        uuid.UUID `json:"actor_id"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishBidEvent(ctx context.Context, event BidEvent) error
	Close() error
}

// KafkaPublisher writes bid events keyed by bid id so that all events of one
// bid land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (k *KafkaPublisher) PublishBidEvent(ctx context.Context, event BidEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal bid event: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.BidID.String()),
		Value: v,
		Time:  event.OccurredAt,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishBidEvent(context.Context, BidEvent) error { return nil }
func (NopPublisher) Close() error                                   { return nil }
