package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/user/ingest-pipeline/internal/adapter/redaction"
	"github.com/user/ingest-pipeline/internal/domain"
)

// UnitCostPerChar is the simulated processing cost per character of text.
const UnitCostPerChar = 50 * time.Millisecond // 0.05s

// CostModel derives a simulated processing duration from a character count.
type CostModel func(charCount int) time.Duration

// LinearCostModel returns charCount * unitCost.
func LinearCostModel(unitCost time.Duration) CostModel {
	return func(charCount int) time.Duration {
		return time.Duration(charCount) * unitCost
	}
}

// DelayFunc realizes a simulated cost as an actual wait. Production uses
// SleepDelay; tests substitute NoDelay.
type DelayFunc func(ctx context.Context, d time.Duration) error

// SleepDelay waits for d or until the context is done. Each delivery runs on
// its own goroutine, so one delivery's wait never blocks another's.
func SleepDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay skips the wait entirely.
func NoDelay(ctx context.Context, d time.Duration) error {
	return nil
}

// ProcessEventUseCase orchestrates the worker-side pipeline: decode the push
// delivery, realize the simulated processing cost, redact PII, assemble the
// processed record, and upsert it under (tenant_id, log_id).
type ProcessEventUseCase struct {
	store    domain.RecordStore
	redactor *redaction.Redactor
	cost     CostModel
	delay    DelayFunc
	now      func() time.Time
	logger   *slog.Logger
}

// NewProcessEventUseCase creates a new ProcessEventUseCase.
func NewProcessEventUseCase(store domain.RecordStore, redactor *redaction.Redactor, cost CostModel, delay DelayFunc, now func() time.Time, logger *slog.Logger) *ProcessEventUseCase {
	return &ProcessEventUseCase{
		store:    store,
		redactor: redactor,
		cost:     cost,
		delay:    delay,
		now:      now,
		logger:   logger,
	}
}

// Process runs the pipeline for one push delivery and returns the persisted
// record along with the event it was derived from. Decoding failures map to
// 400 at the boundary; store failures come back wrapped in
// domain.ErrStoreFailed and map to 500 (retryable).
func (uc *ProcessEventUseCase) Process(ctx context.Context, envelope domain.DeliveryEnvelope) (domain.CanonicalEvent, domain.ProcessedRecord, error) {
	event, err := DecodeDelivery(envelope)
	if err != nil {
		return domain.CanonicalEvent{}, domain.ProcessedRecord{}, err
	}

	uc.logger.Debug("processing delivery", "tenant_id", event.TenantID, "log_id", event.LogID)

	charCount := utf8.RuneCountInString(event.Text)
	simulated := uc.cost(charCount)
	if err := uc.delay(ctx, simulated); err != nil {
		return event, domain.ProcessedRecord{}, fmt.Errorf("processing interrupted: %w", err)
	}

	record := domain.ProcessedRecord{
		Source:                event.SourceType + "_upload",
		OriginalText:          event.Text,
		ModifiedData:          uc.redactor.Redact(event.Text),
		CharCount:             charCount,
		ProcessingTimeSeconds: simulated.Seconds(),
		ReceivedAt:            event.ReceivedAt,
		ProcessedAt:           uc.now().UTC(),
		Status:                domain.StatusCompleted,
	}

	if err := uc.store.Upsert(ctx, event.TenantID, event.LogID, record); err != nil {
		uc.logger.Error("failed to upsert record", "error", err, "tenant_id", event.TenantID, "log_id", event.LogID)
		return event, domain.ProcessedRecord{}, fmt.Errorf("%w: %w", domain.ErrStoreFailed, err)
	}

	return event, record, nil
}
