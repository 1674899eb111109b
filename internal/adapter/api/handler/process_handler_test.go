package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/ingest-pipeline/internal/adapter/metrics"
	"github.com/user/ingest-pipeline/internal/adapter/redaction"
	"github.com/user/ingest-pipeline/internal/domain"
	"github.com/user/ingest-pipeline/internal/domain/mocks"
	"github.com/user/ingest-pipeline/internal/usecase"
)

var workerTestMetrics = metrics.NewWorkerMetrics()

func newTestProcessUseCase(store domain.RecordStore) ProcessUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return usecase.NewProcessEventUseCase(
		store,
		redaction.NewRedactor(redaction.DefaultRules()),
		usecase.LinearCostModel(usecase.UnitCostPerChar),
		usecase.NoDelay,
		func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
		logger,
	)
}

func envelopeBody(t *testing.T, eventJSON string) string {
	t.Helper()
	env := domain.DeliveryEnvelope{
		Message: &domain.DeliveryMessage{
			Data:      base64.StdEncoding.EncodeToString([]byte(eventJSON)),
			MessageID: "1-0",
		},
	}
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return string(body)
}

func TestProcessHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Valid delivery", func(t *testing.T) {
		store := &mocks.MockRecordStore{}
		h := NewProcessHandler(newTestProcessUseCase(store), logger, workerTestMetrics)

		body := envelopeBody(t, `{"tenant_id":"acme","log_id":"log-1","text":"call 555-1234","source_type":"text"}`)
		req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (body %q)", rr.Code, rr.Body.String())
		}
		var resp map[string]string
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "processed" || resp["log_id"] != "log-1" {
			t.Errorf("unexpected response: %v", resp)
		}
		if store.Upserts != 1 {
			t.Errorf("expected 1 upsert, got %d", store.Upserts)
		}
	})

	t.Run("Body is not JSON", func(t *testing.T) {
		store := &mocks.MockRecordStore{}
		h := NewProcessHandler(newTestProcessUseCase(store), logger, workerTestMetrics)

		req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString("not json"))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
		if store.Upserts != 0 {
			t.Errorf("expected no store writes, got %d", store.Upserts)
		}
	})

	t.Run("Envelope without message", func(t *testing.T) {
		store := &mocks.MockRecordStore{}
		h := NewProcessHandler(newTestProcessUseCase(store), logger, workerTestMetrics)

		req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(`{"subscription":"events-sub"}`))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("Non-base64 data", func(t *testing.T) {
		store := &mocks.MockRecordStore{}
		h := NewProcessHandler(newTestProcessUseCase(store), logger, workerTestMetrics)

		req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(`{"message":{"data":"!!not-base64!!"}}`))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
		if store.Upserts != 0 {
			t.Errorf("expected no store writes, got %d", store.Upserts)
		}
	})

	t.Run("Missing required field", func(t *testing.T) {
		store := &mocks.MockRecordStore{}
		h := NewProcessHandler(newTestProcessUseCase(store), logger, workerTestMetrics)

		body := envelopeBody(t, `{"log_id":"log-1","text":"hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("Store failure returns retryable 500", func(t *testing.T) {
		store := &mocks.MockRecordStore{UpsertErr: domain.ErrStoreFailed}
		h := NewProcessHandler(newTestProcessUseCase(store), logger, workerTestMetrics)

		body := envelopeBody(t, `{"tenant_id":"acme","log_id":"log-1","text":"hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rr.Code)
		}
	})

	t.Run("Method not allowed", func(t *testing.T) {
		store := &mocks.MockRecordStore{}
		h := NewProcessHandler(newTestProcessUseCase(store), logger, workerTestMetrics)

		req := httptest.NewRequest(http.MethodGet, "/process", nil)
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rr.Code)
		}
	})
}

var _ ProcessUseCase = (*usecase.ProcessEventUseCase)(nil)
