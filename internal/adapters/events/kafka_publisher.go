package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"purchasing-admin/internal/core"

	"github.com/google/uuid"
	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes purchase events to one topic, keyed by purchase id so
// that events for the same purchase stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafkaGo.Writer
}

// NewKafkaPublisher constructs a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkaGo.Writer{
			Addr:     kafkaGo.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkaGo.Hash{},
		},
	}
}

func (p *KafkaPublisher) PublishPurchaseEvent(ctx context.Context, event core.PurchaseEvent) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newMessage(event core.PurchaseEvent) (kafkaGo.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafkaGo.Message{
		Key:   []byte(strconv.Itoa(event.PurchaseID)),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}
