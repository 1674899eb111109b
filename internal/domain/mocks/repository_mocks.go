package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/user/ingest-pipeline/internal/domain"
)

// MockEventPublisher is a mock implementation of domain.EventPublisher.
type MockEventPublisher struct {
	mu              sync.Mutex
	PublishedEvents []domain.CanonicalEvent
	MessageID       string
	PublishErr      error
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.CanonicalEvent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return "", m.PublishErr
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	if m.MessageID == "" {
		return "mock-msg-1", nil
	}
	return m.MessageID, nil
}

// MockRecordStore is a mock implementation of domain.RecordStore. It keeps
// records keyed the way the real store does, so upsert semantics are
// observable in tests.
type MockRecordStore struct {
	mu        sync.Mutex
	Records   map[string]domain.ProcessedRecord
	Upserts   int
	UpsertErr error
}

func (m *MockRecordStore) Upsert(ctx context.Context, tenantID, logID string, record domain.ProcessedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if m.Records == nil {
		m.Records = make(map[string]domain.ProcessedRecord)
	}
	m.Records[tenantID+"/"+logID] = record
	m.Upserts++
	return nil
}

// MockEventStream is a mock implementation of domain.EventStream.
type MockEventStream struct {
	mu          sync.Mutex
	ReadResult  []domain.QueuedMessage
	ClaimResult []domain.QueuedMessage
	AckedIDs    []string
	ReadErr     error
	AckErr      error
	ClaimErr    error
}

func (m *MockEventStream) ReadBatch(ctx context.Context, count int) ([]domain.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	msgs := m.ReadResult
	m.ReadResult = nil
	return msgs, nil
}

func (m *MockEventStream) Acknowledge(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AckErr != nil {
		return m.AckErr
	}
	m.AckedIDs = append(m.AckedIDs, ids...)
	return nil
}

func (m *MockEventStream) ClaimStale(ctx context.Context, minIdle time.Duration, count int) ([]domain.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClaimErr != nil {
		return nil, m.ClaimErr
	}
	msgs := m.ClaimResult
	m.ClaimResult = nil
	return msgs, nil
}

// MockDeliverySender is a mock implementation of domain.DeliverySender.
type MockDeliverySender struct {
	mu        sync.Mutex
	Sent      []domain.DeliveryEnvelope
	Outcome   domain.DeliveryOutcome
	OutcomeFn func(envelope domain.DeliveryEnvelope) domain.DeliveryOutcome
	SendErr   error
}

func (m *MockDeliverySender) Send(ctx context.Context, envelope domain.DeliveryEnvelope) (domain.DeliveryOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, envelope)
	if m.SendErr != nil {
		return domain.DeliveryFailed, m.SendErr
	}
	if m.OutcomeFn != nil {
		return m.OutcomeFn(envelope), nil
	}
	return m.Outcome, nil
}
