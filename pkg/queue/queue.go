// Package queue manages catalog event messaging for audit and downstream
// integration.
//
// Overview
//   - Publish/subscribe decouples the catalog from consumers (audit
//     archiving, notification bots, reporting).
//   - Unified envelope: Message[Payload] = Header + Payload.
//   - Topic constants live in topics.go, payload structs in payloads.go.
//   - JSON codec (bytedance/sonic), easy to parse from any language.
//
// Envelope JSON shape:
//
//	{
//	  "header": {
//	    "topic": "sv.version.stored",
//	    "trace_id": "optional-trace-id",
//	    "producer": "softvault",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... depends on the topic ... }
//	}
//
// Publishing:
//
//	payload := queue.VersionStoredPayload{ ... }
//	msg, _ := queue.NewWatermillMessage(
//	  queue.TopicVersionStored, payload,
//	  queue.WithProducer("softvault"),
//	)
//	_ = client.Publish(ctx, queue.TopicVersionStored, msg)
//
// Consuming:
//
//	ch, _ := client.Subscribe(ctx, queue.TopicVersionStored)
//	for m := range ch {
//	    env, _ := queue.ParseWatermillMessage[queue.VersionStoredPayload](m)
//	    // use env.Header / env.Payload ...
//	    m.Ack()
//	}
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// EventHeader carries common event metadata. Fill TraceID and Producer at
// publish time for cross-service correlation.
type EventHeader struct {
	// Topic is recorded redundantly so dumped messages stay self-describing.
	Topic string `json:"topic"`
	// TraceID correlates the event with the originating request.
	TraceID string `json:"trace_id,omitempty"`
	// Producer is the publishing service or node.
	Producer string `json:"producer,omitempty"`
	// OccurredAt is the event time (UTC, RFC3339).
	OccurredAt time.Time `json:"occurred_at"`
	// Version is the payload schema version, consumers should ignore
	// unknown fields.
	Version string `json:"version,omitempty"`
}

// Message is the unified envelope: Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

const (
	PayloadVersionV1 string = "v1"
)

// NewEventHeader creates an event header with defaults applied.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID sets the trace id.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer sets the producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// Encode serializes an envelope to JSON.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode deserializes an envelope from JSON.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage builds a watermill message with id and metadata set.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)
	env := Message[T]{Header: header, Payload: payload}

	data, err := Encode(env)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)

	if header.TraceID != "" {
		msg.Metadata.Set("trace_id", header.TraceID)
	}

	if header.Producer != "" {
		msg.Metadata.Set("producer", header.Producer)
	}

	msg.Metadata.Set("occurred_at", header.OccurredAt.Format(time.RFC3339Nano))

	if header.Version != "" {
		msg.Metadata.Set("version", header.Version)
	}

	return msg, nil
}

// ParseWatermillMessage decodes the typed envelope from a watermill message.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
