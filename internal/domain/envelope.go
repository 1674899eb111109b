package domain

import "time"

// DeliveryEnvelope is the outer wrapper a push delivery uses to hand a queued
// message to the worker over HTTP: a transport-encoded payload plus delivery
// metadata.
type DeliveryEnvelope struct {
	Message      *DeliveryMessage `json:"message"`
	Subscription string           `json:"subscription,omitempty"`
}

// DeliveryMessage carries the base64-encoded canonical event payload and the
// out-of-band attributes attached at publish time.
type DeliveryMessage struct {
	Data        string            `json:"data"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	MessageID   string            `json:"message_id,omitempty"`
	PublishTime time.Time         `json:"publish_time,omitzero"`
}
