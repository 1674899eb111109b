package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/ingest-pipeline/internal/adapter/api/handler"
	"github.com/user/ingest-pipeline/internal/adapter/api/middleware"
	"github.com/user/ingest-pipeline/internal/adapter/metrics"
	"github.com/user/ingest-pipeline/internal/domain"
	"github.com/user/ingest-pipeline/internal/pkg/config"
)

// NewIngestRouter creates and configures the HTTP router for the ingestion
// service.
func NewIngestRouter(
	cfg *config.Config,
	logger *slog.Logger,
	ingestUseCase handler.IngestUseCase,
	m *metrics.IngestMetrics,
) http.Handler {
	mux := http.NewServeMux()

	ingestHandler := handler.NewIngestHandler(ingestUseCase, logger, cfg.MaxEventSize, m)
	mux.Handle("POST /ingest", ingestHandler)
	mux.HandleFunc("GET /health", healthCheck("ingest"))

	return middleware.Logging(logger)(middleware.Recover(logger)(mux))
}

// NewWorkerRouter creates and configures the HTTP router for the processing
// worker.
func NewWorkerRouter(
	logger *slog.Logger,
	processUseCase handler.ProcessUseCase,
	m *metrics.WorkerMetrics,
) http.Handler {
	mux := http.NewServeMux()

	processHandler := handler.NewProcessHandler(processUseCase, logger, m)
	mux.Handle("POST /process", processHandler)
	mux.HandleFunc("GET /health", healthCheck("worker"))

	return middleware.Logging(logger)(middleware.Recover(logger)(mux))
}

// NewAdminRouter creates the router for queue introspection endpoints,
// mounted on the admin server next to /metrics.
func NewAdminRouter(inspector domain.QueueInspector, group string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	adminHandler := handler.NewAdminHandler(inspector, group, logger)

	mux.HandleFunc("GET /health", healthCheck("admin"))
	mux.HandleFunc("GET /admin/queue/groups", adminHandler.QueueGroups)
	mux.HandleFunc("GET /admin/queue/pending", adminHandler.QueuePending)

	return mux
}

func healthCheck(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
