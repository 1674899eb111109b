package usecase

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/user/ingest-pipeline/internal/domain"
)

// DispatchDeliveriesUseCase bridges the queue and the worker: it reads
// batches of queued events, wraps each in a push delivery envelope, and
// POSTs them to the worker's trigger endpoint. Acknowledgment follows the
// worker's status: processed and rejected deliveries are acknowledged
// (a rejected payload cannot become valid on redelivery), failed deliveries
// stay pending and are reclaimed once idle longer than minIdle.
type DispatchDeliveriesUseCase struct {
	stream  domain.EventStream
	sender  domain.DeliverySender
	logger  *slog.Logger
	workers int
	minIdle time.Duration
}

// NewDispatchDeliveriesUseCase creates a new dispatch use case. workers
// bounds how many deliveries are in flight at once.
func NewDispatchDeliveriesUseCase(stream domain.EventStream, sender domain.DeliverySender, logger *slog.Logger, workers int, minIdle time.Duration) *DispatchDeliveriesUseCase {
	if workers < 1 {
		workers = 1
	}
	return &DispatchDeliveriesUseCase{
		stream:  stream,
		sender:  sender,
		logger:  logger,
		workers: workers,
		minIdle: minIdle,
	}
}

// DispatchBatch reads up to count messages (new first, then stale pending
// ones) and delivers them concurrently. It returns the number of messages
// delivered or dropped as poison.
func (uc *DispatchDeliveriesUseCase) DispatchBatch(ctx context.Context, count int) (int, error) {
	messages, err := uc.stream.ReadBatch(ctx, count)
	if err != nil {
		uc.logger.Error("failed to read batch from event stream", "error", err)
		return 0, err
	}

	if len(messages) == 0 {
		// Nothing new; pick up deliveries that failed earlier.
		messages, err = uc.stream.ClaimStale(ctx, uc.minIdle, count)
		if err != nil {
			uc.logger.Error("failed to claim stale deliveries", "error", err)
			return 0, err
		}
	}

	if len(messages) == 0 {
		return 0, nil
	}

	ackIDs := make([]string, 0, len(messages))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, uc.workers)

	for _, msg := range messages {
		wg.Add(1)
		sem <- struct{}{}
		go func(msg domain.QueuedMessage) {
			defer wg.Done()
			defer func() { <-sem }()

			if ok := uc.deliver(ctx, msg); ok {
				mu.Lock()
				ackIDs = append(ackIDs, msg.ID)
				mu.Unlock()
			}
		}(msg)
	}
	wg.Wait()

	if len(ackIDs) > 0 {
		if err := uc.stream.Acknowledge(ctx, ackIDs...); err != nil {
			// The worker has the records; the idempotent upsert absorbs the
			// redelivery this causes.
			uc.logger.Error("failed to acknowledge deliveries", "error", err, "count", len(ackIDs))
			return 0, err
		}
	}

	return len(ackIDs), nil
}

// deliver pushes one message to the worker and reports whether it should be
// acknowledged.
func (uc *DispatchDeliveriesUseCase) deliver(ctx context.Context, msg domain.QueuedMessage) bool {
	envelope := domain.DeliveryEnvelope{
		Message: &domain.DeliveryMessage{
			Data:        base64.StdEncoding.EncodeToString(msg.Payload),
			Attributes:  msg.Attributes,
			MessageID:   msg.ID,
			PublishTime: time.Now().UTC(),
		},
	}

	outcome, err := uc.sender.Send(ctx, envelope)
	if err != nil {
		uc.logger.Warn("delivery attempt failed, leaving pending", "error", err, "message_id", msg.ID)
		return false
	}

	switch outcome {
	case domain.DeliveryProcessed:
		return true
	case domain.DeliveryRejected:
		uc.logger.Warn("worker rejected delivery, dropping poison message", "message_id", msg.ID)
		return true
	default:
		uc.logger.Warn("worker failed to process delivery, leaving pending", "message_id", msg.ID)
		return false
	}
}
