package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/ingest-pipeline/internal/domain"
)

// Sender implements domain.DeliverySender over HTTP: it POSTs delivery
// envelopes to the worker's trigger endpoint and classifies the response for
// acknowledgment purposes.
type Sender struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewSender creates a Sender targeting the worker endpoint. A nil client
// gets a default with a bounded timeout.
func NewSender(client *http.Client, endpoint string, logger *slog.Logger) *Sender {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Sender{
		client:   client,
		endpoint: endpoint,
		logger:   logger.With("component", "push_sender"),
	}
}

// Send pushes one envelope. 2xx means processed, 4xx means the worker
// rejected the payload as invalid (non-retryable), anything else is a
// transient failure.
func (s *Sender) Send(ctx context.Context, envelope domain.DeliveryEnvelope) (domain.DeliveryOutcome, error) {
	body, err := json.Marshal(envelope)
	if err != nil {
		return domain.DeliveryFailed, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.DeliveryFailed, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.DeliveryFailed, fmt.Errorf("delivery request failed: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return domain.DeliveryProcessed, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return domain.DeliveryRejected, nil
	default:
		return domain.DeliveryFailed, nil
	}
}
