package usecase

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/user/ingest-pipeline/internal/domain"
)

// DecodeDelivery unwraps a push delivery envelope into a canonical event.
// Failures fall into two classes: domain.ErrMalformedEnvelope when the
// envelope shape, transport encoding, or embedded JSON cannot be decoded,
// and domain.MissingFieldError when the decoded event lacks a required
// field. Neither can become valid on redelivery.
func DecodeDelivery(envelope domain.DeliveryEnvelope) (domain.CanonicalEvent, error) {
	if envelope.Message == nil {
		return domain.CanonicalEvent{}, fmt.Errorf("%w: no message", domain.ErrMalformedEnvelope)
	}
	if envelope.Message.Data == "" {
		return domain.CanonicalEvent{}, fmt.Errorf("%w: no data in message", domain.ErrMalformedEnvelope)
	}

	payload, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		return domain.CanonicalEvent{}, fmt.Errorf("%w: base64 decode: %v", domain.ErrMalformedEnvelope, err)
	}

	var event domain.CanonicalEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.CanonicalEvent{}, fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err)
	}

	if event.TenantID == "" {
		return domain.CanonicalEvent{}, &domain.MissingFieldError{Field: "tenant_id"}
	}
	if event.LogID == "" {
		return domain.CanonicalEvent{}, &domain.MissingFieldError{Field: "log_id"}
	}
	if event.Text == "" {
		return domain.CanonicalEvent{}, &domain.MissingFieldError{Field: "text"}
	}

	// source_type and received_at are optional on decode.
	if event.SourceType == "" {
		event.SourceType = domain.SourceUnknown
	}

	return event, nil
}
