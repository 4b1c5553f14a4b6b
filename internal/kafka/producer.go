package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

const eventOrderRecorded = "order.recorded"

// Producer announces recorded orders. Messages are keyed by tracking token
// so every event for one parcel lands on the same partition.
type Producer struct {
	w   *kafka.Writer
	now func() time.Time
}

type recordedMessage struct {
	Event      string            `json:"event"`
	RecordedAt time.Time         `json:"recorded_at"`
	Order      domain.OrderEvent `json:"order"`
}

func NewProducer(brokers, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		now: time.Now,
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

func (p *Producer) PublishOrder(ctx context.Context, e domain.OrderEvent) error {
	m, err := recordedOrderMessage(e, p.now())
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, m)
}

func recordedOrderMessage(e domain.OrderEvent, now time.Time) (kafka.Message, error) {
	b, err := json.Marshal(recordedMessage{Event: eventOrderRecorded, RecordedAt: now.UTC(), Order: e})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Token),
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event", Value: []byte(eventOrderRecorded)},
			{Key: "order-status", Value: []byte(e.Status)},
		},
	}, nil
}
