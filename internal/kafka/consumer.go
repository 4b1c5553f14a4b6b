package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/RaikyD/wc-tracking-service/internal/application"
	"github.com/RaikyD/wc-tracking-service/internal/domain"
	"github.com/RaikyD/wc-tracking-service/internal/logger"
	"github.com/RaikyD/wc-tracking-service/internal/webhook"
)

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// Receiver is the part of the orders service the consumer drives.
type Receiver interface {
	Receive(ctx context.Context, contentType string, body []byte, signature string) (application.Result, error)
}

// StartConsumer reads raw webhook deliveries relayed onto a topic and runs
// them through the same pipeline as POST /webhook. Message headers carry the
// original Content-Type and signature.
func StartConsumer(ctx context.Context, svc Receiver, cfg ConsumerConfig) *kafka.Reader {
	brokers := strings.Split(cfg.Brokers, ",")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})

	logger.Info("kafka consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		backoff := time.Millisecond * 300
		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				time.Sleep(backoff)
				continue
			}

			if err := deliver(ctx, svc, m, backoff); err != nil {
				return
			}

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("[kafka] commit failed", "err", err)
			}
		}
	}()
	return r
}

// deliver retries m until it is handled or ctx is done. The reader never
// rewinds, so moving on would commit past an unstored order.
func deliver(ctx context.Context, svc Receiver, m kafka.Message, backoff time.Duration) error {
	for {
		err := HandleMessage(ctx, svc, m)
		if err == nil {
			return nil
		}
		logger.Warn("kafka delivery failed, will retry", "offset", m.Offset, "err", err)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// HandleMessage returns an error only when the message should be retried.
// Bad payloads and bad signatures are logged and dropped.
func HandleMessage(ctx context.Context, svc Receiver, m kafka.Message) error {
	contentType, signature := "application/json", ""
	for _, h := range m.Headers {
		switch strings.ToLower(h.Key) {
		case "content-type":
			contentType = string(h.Value)
		case strings.ToLower(webhook.SignatureHeader):
			signature = string(h.Value)
		}
	}

	res, err := svc.Receive(ctx, contentType, m.Value, signature)
	switch {
	case err == nil:
		logger.Info("kafka delivery handled", "partition", m.Partition, "offset", m.Offset, "outcome", res.Outcome)
		return nil
	case errors.Is(err, domain.ErrStoreAppend):
		return err
	default:
		logger.Warn("kafka delivery dropped", "partition", m.Partition, "offset", m.Offset, "err", err)
		return nil
	}
}
