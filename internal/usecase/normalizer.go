package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/user/ingest-pipeline/internal/domain"
)

// ContentCategory is the declared shape of an inbound request body.
type ContentCategory string

const (
	// CategoryStructured is a JSON body carrying tenant_id and text keys.
	CategoryStructured ContentCategory = "structured"
	// CategoryPlain is a raw text body with an out-of-band tenant header.
	CategoryPlain ContentCategory = "plain"
)

// Normalizer validates and shapes an inbound request into a canonical event.
// The clock and id generator are injected so normalization is deterministic
// under test.
type Normalizer struct {
	now   func() time.Time
	newID func() string
}

// NewNormalizer creates a Normalizer with the given clock and id generator.
func NewNormalizer(now func() time.Time, newID func() string) *Normalizer {
	return &Normalizer{now: now, newID: newID}
}

type structuredRequest struct {
	TenantID *string `json:"tenant_id"`
	LogID    string  `json:"log_id"`
	Text     *string `json:"text"`
}

// Normalize produces a canonical event from a raw payload and its declared
// content category, or fails with a validation error. tenantHeader is only
// consulted for the plain category.
func (n *Normalizer) Normalize(category ContentCategory, body []byte, tenantHeader string) (domain.CanonicalEvent, error) {
	switch category {
	case CategoryStructured:
		return n.normalizeStructured(body)
	case CategoryPlain:
		return n.normalizePlain(body, tenantHeader)
	default:
		return domain.CanonicalEvent{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedContentType, category)
	}
}

func (n *Normalizer) normalizeStructured(body []byte) (domain.CanonicalEvent, error) {
	var req structuredRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return domain.CanonicalEvent{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if req.TenantID == nil || *req.TenantID == "" {
		return domain.CanonicalEvent{}, &domain.MissingFieldError{Field: "tenant_id"}
	}
	if req.Text == nil {
		return domain.CanonicalEvent{}, &domain.MissingFieldError{Field: "text"}
	}
	if *req.Text == "" {
		return domain.CanonicalEvent{}, domain.ErrEmptyPayload
	}

	logID := req.LogID
	if logID == "" {
		logID = n.newID()
	}

	return domain.CanonicalEvent{
		TenantID:   *req.TenantID,
		LogID:      logID,
		Text:       *req.Text,
		SourceType: domain.SourceJSON,
		ReceivedAt: n.now().UTC(),
	}, nil
}

func (n *Normalizer) normalizePlain(body []byte, tenantHeader string) (domain.CanonicalEvent, error) {
	if tenantHeader == "" {
		return domain.CanonicalEvent{}, &domain.MissingHeaderError{Header: "X-Tenant-ID"}
	}
	text := string(body)
	if strings.TrimSpace(text) == "" {
		return domain.CanonicalEvent{}, domain.ErrEmptyPayload
	}

	return domain.CanonicalEvent{
		TenantID:   tenantHeader,
		LogID:      n.newID(), // no client-supplied id path for plain text
		Text:       text,
		SourceType: domain.SourceText,
		ReceivedAt: n.now().UTC(),
	}, nil
}
