package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/ingest-pipeline/internal/domain"
)

// AdminHandler exposes read-only introspection of the event stream.
type AdminHandler struct {
	inspector domain.QueueInspector
	group     string
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler for the given consumer group.
func NewAdminHandler(inspector domain.QueueInspector, group string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{inspector: inspector, group: group, logger: logger}
}

// QueueGroups handles GET /admin/queue/groups.
func (h *AdminHandler) QueueGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.inspector.GroupInfo(r.Context())
	if err != nil {
		h.logger.Error("failed to get group info", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, groups)
}

// QueuePending handles GET /admin/queue/pending.
func (h *AdminHandler) QueuePending(w http.ResponseWriter, r *http.Request) {
	summary, err := h.inspector.PendingSummary(r.Context(), h.group)
	if err != nil {
		h.logger.Error("failed to get pending summary", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.respondWithJSON(w, http.StatusOK, summary)
}

func (h *AdminHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
