package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/user/ingest-pipeline/internal/adapter/metrics"
	"github.com/user/ingest-pipeline/internal/domain"
)

// ProcessUseCase is the slice of usecase.ProcessEventUseCase the handler
// needs.
type ProcessUseCase interface {
	Process(ctx context.Context, envelope domain.DeliveryEnvelope) (domain.CanonicalEvent, domain.ProcessedRecord, error)
}

// ProcessHandler is the worker's trigger endpoint: it receives one push
// delivery envelope per request and runs the processing pipeline on it.
type ProcessHandler struct {
	useCase ProcessUseCase
	logger  *slog.Logger
	metrics *metrics.WorkerMetrics
}

// NewProcessHandler creates a new ProcessHandler. metrics may be nil.
func NewProcessHandler(uc ProcessUseCase, logger *slog.Logger, m *metrics.WorkerMetrics) *ProcessHandler {
	return &ProcessHandler{
		useCase: uc,
		logger:  logger,
		metrics: m,
	}
}

type processedResponse struct {
	Status string `json:"status"`
	LogID  string `json:"log_id"`
}

// ServeHTTP handles one push delivery. 400 marks the delivery as
// non-retryable (the dispatcher drops it); 500 signals "will retry" and
// triggers redelivery.
func (h *ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var envelope domain.DeliveryEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.count("error_envelope")
		http.Error(w, "Invalid delivery envelope", http.StatusBadRequest)
		return
	}

	event, record, err := h.useCase.Process(r.Context(), envelope)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.DeliveriesTotal.WithLabelValues("processed").Inc()
		h.metrics.ProcessingSeconds.Observe(record.ProcessingTimeSeconds)
		h.metrics.RecordsUpserted.Inc()
	}
	h.logger.Info("delivery processed", "tenant_id", event.TenantID, "log_id", event.LogID, "char_count", record.CharCount)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(processedResponse{Status: "processed", LogID: event.LogID})
}

func (h *ProcessHandler) respondError(w http.ResponseWriter, err error) {
	var mf *domain.MissingFieldError
	switch {
	case errors.Is(err, domain.ErrMalformedEnvelope):
		h.count("error_envelope")
		http.Error(w, "Invalid delivery envelope", http.StatusBadRequest)
	case errors.As(err, &mf):
		h.count("error_envelope")
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrStoreFailed):
		h.count("error_store")
		http.Error(w, "Processing failed, will retry", http.StatusInternalServerError)
	default:
		h.count("error_internal")
		h.logger.Error("unclassified processing failure", "error", err)
		http.Error(w, "Processing failed, will retry", http.StatusInternalServerError)
	}
}

func (h *ProcessHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.DeliveriesTotal.WithLabelValues(status).Inc()
	}
}
