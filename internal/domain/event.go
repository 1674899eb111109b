package domain

import "time"

// Source types a canonical event can carry. Events decoded from the queue
// without a source_type fall back to SourceUnknown.
const (
	SourceJSON    = "json"
	SourceText    = "text"
	SourceUnknown = "unknown"
)

// StatusCompleted is the terminal status of a successfully processed record.
const StatusCompleted = "completed"

// CanonicalEvent is the normalized representation of an ingested text event,
// independent of its original transport format. It is the unit that flows
// from the ingestion service through the queue to the worker.
type CanonicalEvent struct {
	TenantID   string    `json:"tenant_id"`
	LogID      string    `json:"log_id"`
	Text       string    `json:"text"`
	SourceType string    `json:"source_type"`
	ReceivedAt time.Time `json:"received_at"`
}

// ProcessedRecord is the unit persisted by the worker, keyed by
// (tenant_id, log_id). Reprocessing the same event overwrites the record
// with an equivalent one.
type ProcessedRecord struct {
	Source                string    `json:"source"`
	OriginalText          string    `json:"original_text"`
	ModifiedData          string    `json:"modified_data"`
	CharCount             int       `json:"char_count"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	ReceivedAt            time.Time `json:"received_at,omitzero"`
	ProcessedAt           time.Time `json:"processed_at"`
	Status                string    `json:"status"`
}
