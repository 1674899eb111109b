package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/ingest-pipeline/internal/domain"
)

const readBlock = 2 * time.Second

// Subscriber implements domain.EventStream on a Redis Stream consumer group.
// The dispatcher uses it to read new messages, acknowledge completed
// deliveries, and reclaim stale pending entries for redelivery.
type Subscriber struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	logger   *slog.Logger
}

// NewSubscriber creates a Subscriber and ensures the consumer group exists.
func NewSubscriber(ctx context.Context, client *redis.Client, stream, group, consumer string, logger *slog.Logger) (*Subscriber, error) {
	s := &Subscriber{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		logger:   logger.With("component", "queue_subscriber"),
	}

	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !isBusyGroupError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return s, nil
}

// ReadBatch reads up to count new messages for this consumer, blocking
// briefly when the stream is empty.
func (s *Subscriber) ReadBatch(ctx context.Context, count int) ([]domain.QueuedMessage, error) {
	args := &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    int64(count),
		Block:    readBlock,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 {
		return nil, nil
	}

	return s.toQueuedMessages(streams[0].Messages), nil
}

// Acknowledge marks deliveries as completed in the consumer group.
func (s *Subscriber) Acknowledge(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.XAck(ctx, s.stream, s.group, ids...).Err(); err != nil {
		return fmt.Errorf("failed to acknowledge messages: %w", err)
	}
	return nil
}

// ClaimStale re-claims up to count pending messages idle longer than minIdle,
// transferring them to this consumer so they get redelivered.
func (s *Subscriber) ClaimStale(ctx context.Context, minIdle time.Duration, count int) ([]domain.QueuedMessage, error) {
	args := &redis.XAutoClaimArgs{
		Stream:   s.stream,
		Group:    s.group,
		Consumer: s.consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    int64(count),
	}

	msgs, _, err := s.client.XAutoClaim(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	return s.toQueuedMessages(msgs), nil
}

func (s *Subscriber) toQueuedMessages(msgs []redis.XMessage) []domain.QueuedMessage {
	out := make([]domain.QueuedMessage, 0, len(msgs))
	for _, msg := range msgs {
		payload, ok := msg.Values["payload"].(string)
		if !ok {
			s.logger.Warn("message without payload field, skipping", "message_id", msg.ID)
			continue
		}

		attrs := make(map[string]string, 2)
		if tenant, ok := msg.Values["tenant_id"].(string); ok {
			attrs["tenant_id"] = tenant
		}
		if logID, ok := msg.Values["log_id"].(string); ok {
			attrs["log_id"] = logID
		}

		out = append(out, domain.QueuedMessage{
			ID:         msg.ID,
			Payload:    []byte(payload),
			Attributes: attrs,
		})
	}
	return out
}

func isBusyGroupError(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}
