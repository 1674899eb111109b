package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/user/ingest-pipeline/internal/domain"
)

// RecordRepository implements domain.RecordStore on PostgreSQL. Records are
// keyed by the composite (tenant_id, log_id) primary key; writes are
// unconditional last-write-wins upserts, which is safe because reprocessing
// the same event yields an equivalent record.
type RecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRecordRepository creates a new PostgreSQL record repository.
func NewRecordRepository(db *sql.DB, logger *slog.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: logger.With("component", "record_repository")}
}

// Upsert writes the record under (tenantID, logID), overwriting any previous
// version.
func (r *RecordRepository) Upsert(ctx context.Context, tenantID, logID string, record domain.ProcessedRecord) error {
	query := `
		INSERT INTO processed_records (
			tenant_id, log_id, source, original_text, modified_data,
			char_count, processing_time_seconds, received_at, processed_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, log_id) DO UPDATE SET
			source = EXCLUDED.source,
			original_text = EXCLUDED.original_text,
			modified_data = EXCLUDED.modified_data,
			char_count = EXCLUDED.char_count,
			processing_time_seconds = EXCLUDED.processing_time_seconds,
			received_at = EXCLUDED.received_at,
			processed_at = EXCLUDED.processed_at,
			status = EXCLUDED.status;
	`

	receivedAt := sql.NullTime{Time: record.ReceivedAt, Valid: !record.ReceivedAt.IsZero()}

	_, err := r.db.ExecContext(ctx, query,
		tenantID, logID, record.Source, record.OriginalText, record.ModifiedData,
		record.CharCount, record.ProcessingTimeSeconds, receivedAt, record.ProcessedAt, record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert processed record: %w", err)
	}

	return nil
}
