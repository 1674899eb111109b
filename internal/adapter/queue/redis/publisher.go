package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/ingest-pipeline/internal/adapter/metrics"
	"github.com/user/ingest-pipeline/internal/domain"
)

// Publisher implements domain.EventPublisher on a Redis Stream. It serializes
// the canonical event, attaches tenant_id and log_id as separate stream
// fields so downstream tooling can filter without parsing the payload, and
// XADDs to the event stream.
type Publisher struct {
	client  *redis.Client
	stream  string
	ackWait time.Duration
	logger  *slog.Logger
	metrics *metrics.IngestMetrics
}

// NewPublisher creates a new Publisher. ackWait bounds how long Publish
// waits for the broker-assigned message id; metrics may be nil.
func NewPublisher(client *redis.Client, stream string, ackWait time.Duration, logger *slog.Logger, m *metrics.IngestMetrics) *Publisher {
	return &Publisher{
		client:  client,
		stream:  stream,
		ackWait: ackWait,
		logger:  logger.With("component", "queue_publisher"),
		metrics: m,
	}
}

type sendResult struct {
	id  string
	err error
}

// Publish sends the event and waits up to ackWait for the broker-assigned
// message id. If the wait expires first, it returns the "pending" sentinel
// without error: the send keeps running on a detached context, and broker
// acceptance is durable once the send completes. A send failure observed
// within the wait propagates wrapped in domain.ErrPublishFailed.
func (p *Publisher) Publish(ctx context.Context, event domain.CanonicalEvent) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("%w: marshal event: %w", domain.ErrPublishFailed, err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"payload":   payload,
			"tenant_id": event.TenantID,
			"log_id":    event.LogID,
		},
	}

	// The ack wait must not cancel the underlying send.
	sendCtx := context.WithoutCancel(ctx)
	results := make(chan sendResult, 1)
	start := time.Now()
	go func() {
		id, err := p.client.XAdd(sendCtx, args).Result()
		results <- sendResult{id: id, err: err}
	}()

	timer := time.NewTimer(p.ackWait)
	defer timer.Stop()

	select {
	case res := <-results:
		if p.metrics != nil {
			p.metrics.PublishSeconds.Observe(time.Since(start).Seconds())
		}
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrPublishFailed, res.err)
		}
		return res.id, nil
	case <-timer.C:
		if p.metrics != nil {
			p.metrics.PublishPending.Inc()
		}
		p.logger.Warn("publish ack wait expired, returning pending handle",
			"tenant_id", event.TenantID, "log_id", event.LogID, "ack_wait", p.ackWait)
		return domain.MessageIDPending, nil
	}
}
