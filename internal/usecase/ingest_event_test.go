package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/user/ingest-pipeline/internal/domain"
	"github.com/user/ingest-pipeline/internal/domain/mocks"
)

func TestIngestEventUseCase_Ingest(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	normalizer := NewNormalizer(fixedClock, fixedID)

	t.Run("Successful ingestion", func(t *testing.T) {
		publisher := &mocks.MockEventPublisher{MessageID: "1700000000000-0"}
		uc := NewIngestEventUseCase(normalizer, publisher, logger)

		result, err := uc.Ingest(context.Background(), CategoryStructured, []byte(`{"tenant_id":"acme","text":"hello"}`), "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.MessageID != "1700000000000-0" {
			t.Errorf("unexpected message id: %q", result.MessageID)
		}
		if len(publisher.PublishedEvents) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(publisher.PublishedEvents))
		}
		if publisher.PublishedEvents[0].LogID != result.Event.LogID {
			t.Error("published event log_id mismatch")
		}
	})

	t.Run("Pending acknowledgment is a success", func(t *testing.T) {
		publisher := &mocks.MockEventPublisher{MessageID: domain.MessageIDPending}
		uc := NewIngestEventUseCase(normalizer, publisher, logger)

		result, err := uc.Ingest(context.Background(), CategoryStructured, []byte(`{"tenant_id":"acme","text":"hello"}`), "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.MessageID != domain.MessageIDPending {
			t.Errorf("expected pending handle, got %q", result.MessageID)
		}
	})

	t.Run("Validation failure does not publish", func(t *testing.T) {
		publisher := &mocks.MockEventPublisher{}
		uc := NewIngestEventUseCase(normalizer, publisher, logger)

		_, err := uc.Ingest(context.Background(), CategoryStructured, []byte(`{"text":"hello"}`), "")
		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if !domain.IsValidationError(err) {
			t.Errorf("expected a validation error, got %v", err)
		}
		if len(publisher.PublishedEvents) != 0 {
			t.Errorf("expected no publish on validation failure, got %d", len(publisher.PublishedEvents))
		}
	})

	t.Run("Publish failure propagates", func(t *testing.T) {
		publisher := &mocks.MockEventPublisher{PublishErr: domain.ErrPublishFailed}
		uc := NewIngestEventUseCase(normalizer, publisher, logger)

		_, err := uc.Ingest(context.Background(), CategoryPlain, []byte("raw line"), "acme")
		if !errors.Is(err, domain.ErrPublishFailed) {
			t.Fatalf("expected ErrPublishFailed, got %v", err)
		}
	})
}
