package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/user/ingest-pipeline/internal/adapter/metrics"
	"github.com/user/ingest-pipeline/internal/domain"
	"github.com/user/ingest-pipeline/internal/usecase"
)

// TenantHeader is the out-of-band tenant identifier for plain-text requests.
const TenantHeader = "X-Tenant-ID"

// IngestUseCase is the slice of usecase.IngestEventUseCase the handler needs.
type IngestUseCase interface {
	Ingest(ctx context.Context, category usecase.ContentCategory, body []byte, tenantHeader string) (usecase.IngestResult, error)
}

// IngestHandler handles HTTP requests for event ingestion.
type IngestHandler struct {
	useCase      IngestUseCase
	logger       *slog.Logger
	maxEventSize int64
	metrics      *metrics.IngestMetrics
}

// NewIngestHandler creates a new IngestHandler. metrics may be nil.
func NewIngestHandler(uc IngestUseCase, logger *slog.Logger, maxEventSize int64, m *metrics.IngestMetrics) *IngestHandler {
	return &IngestHandler{
		useCase:      uc,
		logger:       logger,
		maxEventSize: maxEventSize,
		metrics:      m,
	}
}

type acceptedResponse struct {
	Status    string `json:"status"`
	LogID     string `json:"log_id"`
	TenantID  string `json:"tenant_id"`
	MessageID string `json:"message_id"`
}

// ServeHTTP processes incoming ingestion requests. The Content-Type header
// selects the content category: application/json is structured, text/plain
// is plain; anything else is rejected with 415.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxEventSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.count("error_size")
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.count("error_read")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	category, ok := contentCategory(r.Header.Get("Content-Type"))
	if !ok {
		h.count("error_media_type")
		http.Error(w, "Unsupported Content-Type", http.StatusUnsupportedMediaType)
		return
	}

	result, err := h.useCase.Ingest(r.Context(), category, body, r.Header.Get(TenantHeader))
	if err != nil {
		h.respondError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.EventsTotal.WithLabelValues("accepted").Inc()
		h.metrics.BytesTotal.Add(float64(len(body)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(acceptedResponse{
		Status:    "accepted",
		LogID:     result.Event.LogID,
		TenantID:  result.Event.TenantID,
		MessageID: result.MessageID,
	})
}

// respondError performs the single mapping pass from error kinds to status
// codes. Anything unforeseen becomes a generic 500 without internal detail.
func (h *IngestHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedContentType):
		h.count("error_media_type")
		http.Error(w, "Unsupported Content-Type", http.StatusUnsupportedMediaType)
	case domain.IsValidationError(err):
		h.count("error_validation")
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrPublishFailed):
		h.count("error_publish")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		h.count("error_internal")
		h.logger.Error("unclassified ingest failure", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *IngestHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.EventsTotal.WithLabelValues(status).Inc()
	}
}

// contentCategory maps a Content-Type header to a content category.
func contentCategory(contentType string) (usecase.ContentCategory, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch mediaType {
	case "application/json":
		return usecase.CategoryStructured, true
	case "text/plain":
		return usecase.CategoryPlain, true
	default:
		return "", false
	}
}
