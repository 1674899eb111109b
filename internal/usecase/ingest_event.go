package usecase

import (
	"context"
	"log/slog"

	"github.com/user/ingest-pipeline/internal/domain"
)

// IngestResult is what the HTTP boundary needs to build the acceptance
// response.
type IngestResult struct {
	Event     domain.CanonicalEvent
	MessageID string
}

// IngestEventUseCase handles the business logic for ingesting a text event:
// normalize the raw payload, then publish the canonical event to the queue.
type IngestEventUseCase struct {
	normalizer *Normalizer
	publisher  domain.EventPublisher
	logger     *slog.Logger
}

// NewIngestEventUseCase creates a new IngestEventUseCase.
func NewIngestEventUseCase(normalizer *Normalizer, publisher domain.EventPublisher, logger *slog.Logger) *IngestEventUseCase {
	return &IngestEventUseCase{
		normalizer: normalizer,
		publisher:  publisher,
		logger:     logger,
	}
}

// Ingest validates and shapes the payload, then publishes it. Validation
// failures come back as domain validation errors; a publish failure comes
// back wrapped in domain.ErrPublishFailed.
func (uc *IngestEventUseCase) Ingest(ctx context.Context, category ContentCategory, body []byte, tenantHeader string) (IngestResult, error) {
	event, err := uc.normalizer.Normalize(category, body, tenantHeader)
	if err != nil {
		return IngestResult{}, err
	}

	messageID, err := uc.publisher.Publish(ctx, event)
	if err != nil {
		uc.logger.Error("failed to publish event", "error", err, "tenant_id", event.TenantID, "log_id", event.LogID)
		return IngestResult{}, err
	}

	uc.logger.Debug("event published", "tenant_id", event.TenantID, "log_id", event.LogID, "message_id", messageID)

	return IngestResult{Event: event, MessageID: messageID}, nil
}
