package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/user/ingest-pipeline/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func fixedID() string {
	return "generated-id-1"
}

func TestNormalizer_Structured(t *testing.T) {
	n := NewNormalizer(fixedClock, fixedID)

	t.Run("Valid with client-supplied log_id", func(t *testing.T) {
		event, err := n.Normalize(CategoryStructured, []byte(`{"tenant_id":"acme","log_id":"log-7","text":"hello"}`), "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if event.TenantID != "acme" || event.LogID != "log-7" || event.Text != "hello" {
			t.Errorf("unexpected event: %+v", event)
		}
		if event.SourceType != domain.SourceJSON {
			t.Errorf("expected source_type json, got %s", event.SourceType)
		}
		if !event.ReceivedAt.Equal(fixedClock()) {
			t.Errorf("expected fixed received_at, got %v", event.ReceivedAt)
		}
	})

	t.Run("Generates log_id when absent", func(t *testing.T) {
		event, err := n.Normalize(CategoryStructured, []byte(`{"tenant_id":"acme","text":"hello"}`), "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if event.LogID != fixedID() {
			t.Errorf("expected generated log_id %q, got %q", fixedID(), event.LogID)
		}
	})

	t.Run("Missing tenant_id", func(t *testing.T) {
		_, err := n.Normalize(CategoryStructured, []byte(`{"text":"hello"}`), "")
		var mf *domain.MissingFieldError
		if !errors.As(err, &mf) || mf.Field != "tenant_id" {
			t.Fatalf("expected MissingFieldError(tenant_id), got %v", err)
		}
	})

	t.Run("Missing text", func(t *testing.T) {
		_, err := n.Normalize(CategoryStructured, []byte(`{"tenant_id":"acme"}`), "")
		var mf *domain.MissingFieldError
		if !errors.As(err, &mf) || mf.Field != "text" {
			t.Fatalf("expected MissingFieldError(text), got %v", err)
		}
	})

	t.Run("Empty text rejected", func(t *testing.T) {
		_, err := n.Normalize(CategoryStructured, []byte(`{"tenant_id":"acme","text":""}`), "")
		if !errors.Is(err, domain.ErrEmptyPayload) {
			t.Fatalf("expected ErrEmptyPayload, got %v", err)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := n.Normalize(CategoryStructured, []byte(`{"tenant_id":"acme"`), "")
		if !errors.Is(err, domain.ErrMalformedPayload) {
			t.Fatalf("expected ErrMalformedPayload, got %v", err)
		}
	})
}

func TestNormalizer_Plain(t *testing.T) {
	n := NewNormalizer(fixedClock, fixedID)

	t.Run("Valid plain text", func(t *testing.T) {
		event, err := n.Normalize(CategoryPlain, []byte("raw log line"), "acme")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if event.TenantID != "acme" {
			t.Errorf("expected tenant from header, got %q", event.TenantID)
		}
		if event.Text != "raw log line" {
			t.Errorf("expected text preserved, got %q", event.Text)
		}
		if event.SourceType != domain.SourceText {
			t.Errorf("expected source_type text, got %s", event.SourceType)
		}
		if event.LogID != fixedID() {
			t.Errorf("expected generated log_id, got %q", event.LogID)
		}
	})

	t.Run("Missing tenant header", func(t *testing.T) {
		_, err := n.Normalize(CategoryPlain, []byte("raw log line"), "")
		var mh *domain.MissingHeaderError
		if !errors.As(err, &mh) {
			t.Fatalf("expected MissingHeaderError, got %v", err)
		}
	})

	t.Run("Whitespace-only body", func(t *testing.T) {
		_, err := n.Normalize(CategoryPlain, []byte("   \n\t "), "acme")
		if !errors.Is(err, domain.ErrEmptyPayload) {
			t.Fatalf("expected ErrEmptyPayload, got %v", err)
		}
	})

	t.Run("Surrounding whitespace is preserved in accepted text", func(t *testing.T) {
		event, err := n.Normalize(CategoryPlain, []byte("  padded  "), "acme")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if event.Text != "  padded  " {
			t.Errorf("expected original body kept, got %q", event.Text)
		}
	})
}

func TestNormalizer_UnsupportedCategory(t *testing.T) {
	n := NewNormalizer(fixedClock, fixedID)

	_, err := n.Normalize(ContentCategory("xml"), []byte("<log/>"), "acme")
	if !errors.Is(err, domain.ErrUnsupportedContentType) {
		t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
	}
}
