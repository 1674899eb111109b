package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/user/ingest-pipeline/internal/domain"
	"github.com/user/ingest-pipeline/internal/domain/mocks"
)

func TestDispatchDeliveriesUseCase_DispatchBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messages := []domain.QueuedMessage{
		{ID: "1-0", Payload: []byte(`{"tenant_id":"acme","log_id":"a"}`), Attributes: map[string]string{"tenant_id": "acme", "log_id": "a"}},
		{ID: "2-0", Payload: []byte(`{"tenant_id":"beta","log_id":"b"}`), Attributes: map[string]string{"tenant_id": "beta", "log_id": "b"}},
	}

	t.Run("Processed deliveries are acknowledged", func(t *testing.T) {
		stream := &mocks.MockEventStream{ReadResult: messages}
		sender := &mocks.MockDeliverySender{Outcome: domain.DeliveryProcessed}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 4, time.Second)

		count, err := uc.DispatchBatch(context.Background(), 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 dispatched, got %d", count)
		}
		if len(sender.Sent) != 2 {
			t.Errorf("expected 2 deliveries sent, got %d", len(sender.Sent))
		}
		if len(stream.AckedIDs) != 2 {
			t.Errorf("expected 2 acks, got %d", len(stream.AckedIDs))
		}
	})

	t.Run("Envelope carries base64 payload and attributes", func(t *testing.T) {
		stream := &mocks.MockEventStream{ReadResult: messages[:1]}
		sender := &mocks.MockDeliverySender{Outcome: domain.DeliveryProcessed}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 1, time.Second)

		if _, err := uc.DispatchBatch(context.Background(), 10); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		env := sender.Sent[0]
		if env.Message == nil {
			t.Fatal("expected a message in the envelope")
		}
		decoded, err := base64.StdEncoding.DecodeString(env.Message.Data)
		if err != nil {
			t.Fatalf("envelope data is not base64: %v", err)
		}
		if string(decoded) != string(messages[0].Payload) {
			t.Errorf("payload mismatch: %s", decoded)
		}
		if env.Message.Attributes["tenant_id"] != "acme" {
			t.Errorf("expected tenant_id attribute, got %v", env.Message.Attributes)
		}
		if env.Message.MessageID != "1-0" {
			t.Errorf("expected message id 1-0, got %q", env.Message.MessageID)
		}
	})

	t.Run("Rejected deliveries are acknowledged as poison", func(t *testing.T) {
		stream := &mocks.MockEventStream{ReadResult: messages}
		sender := &mocks.MockDeliverySender{Outcome: domain.DeliveryRejected}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 4, time.Second)

		count, err := uc.DispatchBatch(context.Background(), 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 handled, got %d", count)
		}
		if len(stream.AckedIDs) != 2 {
			t.Errorf("expected poison messages acked, got %d acks", len(stream.AckedIDs))
		}
	})

	t.Run("Failed deliveries stay pending", func(t *testing.T) {
		stream := &mocks.MockEventStream{ReadResult: messages}
		sender := &mocks.MockDeliverySender{Outcome: domain.DeliveryFailed}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 4, time.Second)

		count, err := uc.DispatchBatch(context.Background(), 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 handled, got %d", count)
		}
		if len(stream.AckedIDs) != 0 {
			t.Errorf("expected no acks, got %d", len(stream.AckedIDs))
		}
	})

	t.Run("Sender error leaves message pending", func(t *testing.T) {
		stream := &mocks.MockEventStream{ReadResult: messages[:1]}
		sender := &mocks.MockDeliverySender{SendErr: errors.New("connection refused")}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 4, time.Second)

		count, err := uc.DispatchBatch(context.Background(), 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 || len(stream.AckedIDs) != 0 {
			t.Errorf("expected nothing acked, got count=%d acks=%d", count, len(stream.AckedIDs))
		}
	})

	t.Run("Claims stale messages when stream is empty", func(t *testing.T) {
		stream := &mocks.MockEventStream{ClaimResult: messages[:1]}
		sender := &mocks.MockDeliverySender{Outcome: domain.DeliveryProcessed}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 4, time.Second)

		count, err := uc.DispatchBatch(context.Background(), 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 redelivered, got %d", count)
		}
		if len(stream.AckedIDs) != 1 {
			t.Errorf("expected 1 ack, got %d", len(stream.AckedIDs))
		}
	})

	t.Run("Read error propagates", func(t *testing.T) {
		stream := &mocks.MockEventStream{ReadErr: errors.New("stream unavailable")}
		sender := &mocks.MockDeliverySender{}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 4, time.Second)

		if _, err := uc.DispatchBatch(context.Background(), 10); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})

	t.Run("No messages is not an error", func(t *testing.T) {
		stream := &mocks.MockEventStream{}
		sender := &mocks.MockDeliverySender{}
		uc := NewDispatchDeliveriesUseCase(stream, sender, logger, 4, time.Second)

		count, err := uc.DispatchBatch(context.Background(), 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0, got %d", count)
		}
	})
}
