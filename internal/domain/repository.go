package domain

import (
	"context"
	"time"
)

// MessageIDPending is the sentinel message handle returned when the broker
// accepted a send but the bounded acknowledgment wait expired. The send is
// still expected to succeed; callers treat this as success.
const MessageIDPending = "pending"

// EventPublisher is the gateway the ingestion service uses to hand a
// canonical event to the durable queue. Publish returns the broker-assigned
// message id, or MessageIDPending if the acknowledgment did not arrive within
// the gateway's bounded wait.
type EventPublisher interface {
	Publish(ctx context.Context, event CanonicalEvent) (string, error)
}

// QueuedMessage is a raw queue entry as read by the dispatcher: the canonical
// event payload plus the attributes attached at publish time.
type QueuedMessage struct {
	ID         string
	Payload    []byte
	Attributes map[string]string
}

// EventStream is the consuming side of the queue. ReadBatch returns up to
// count new messages for this consumer; messages stay pending until
// Acknowledge is called. ClaimStale re-claims pending messages idle longer
// than minIdle so failed deliveries are retried.
type EventStream interface {
	ReadBatch(ctx context.Context, count int) ([]QueuedMessage, error)
	Acknowledge(ctx context.Context, ids ...string) error
	ClaimStale(ctx context.Context, minIdle time.Duration, count int) ([]QueuedMessage, error)
}

// DeliveryOutcome classifies a push delivery attempt for acknowledgment
// purposes.
type DeliveryOutcome int

const (
	// DeliveryProcessed means the worker accepted and processed the event.
	DeliveryProcessed DeliveryOutcome = iota
	// DeliveryRejected means the worker rejected the payload as invalid.
	// Redelivery cannot fix it, so the message is acknowledged anyway.
	DeliveryRejected
	// DeliveryFailed means a transient worker or transport failure; the
	// message stays pending and is redelivered later.
	DeliveryFailed
)

// DeliverySender pushes a delivery envelope to the worker's trigger endpoint.
type DeliverySender interface {
	Send(ctx context.Context, envelope DeliveryEnvelope) (DeliveryOutcome, error)
}

// RecordStore is the document store the worker persists processed records
// into. Upsert is a last-write-wins write under the composite
// (tenantID, logID) key.
type RecordStore interface {
	Upsert(ctx context.Context, tenantID, logID string, record ProcessedRecord) error
}

// ConsumerGroupInfo describes a consumer group attached to the event stream.
type ConsumerGroupInfo struct {
	Name            string `json:"name"`
	Consumers       int64  `json:"consumers"`
	Pending         int64  `json:"pending"`
	LastDeliveredID string `json:"last_delivered_id"`
}

// PendingSummary summarizes the messages delivered to a consumer group but
// not yet acknowledged, i.e. deliveries awaiting completion or redelivery.
type PendingSummary struct {
	Total          int64            `json:"total"`
	FirstMessageID string           `json:"first_message_id,omitempty"`
	LastMessageID  string           `json:"last_message_id,omitempty"`
	ConsumerTotals map[string]int64 `json:"consumer_totals,omitempty"`
}

// QueueInspector exposes read-only introspection of the event stream for the
// admin endpoints.
type QueueInspector interface {
	GroupInfo(ctx context.Context) ([]ConsumerGroupInfo, error)
	PendingSummary(ctx context.Context, group string) (*PendingSummary, error)
}
