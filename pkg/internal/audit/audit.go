// Package audit consumes the catalog events and writes the audit trail.
// Every mutation the service performs surfaces as a structured log line
// with the acting moderator attached.
package audit

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/dkozyrev/softvault/pkg/internal/storage/mq"
	nlog "github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/queue"
)

// Consumer tails the event topics and logs each one.
type Consumer struct {
	client *mq.Client
}

// NewConsumer creates an audit consumer over the given queue client.
func NewConsumer(client *mq.Client) *Consumer {
	return &Consumer{client: client}
}

// Start subscribes to every catalog topic. Each subscription runs its own
// goroutine until the context ends.
func (c *Consumer) Start(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	for _, topic := range queue.CatalogTopics {
		ch, err := c.client.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		go c.consume(ctx, topic, ch)
	}

	return nil
}

func (c *Consumer) consume(ctx context.Context, topic string, ch <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			c.record(topic, msg)
			msg.Ack()
		}
	}
}

// record writes one audit line. Payloads that fail to parse are still
// logged raw: a malformed event is itself worth seeing.
func (c *Consumer) record(topic string, msg *message.Message) {
	l := nlog.Logger()

	switch topic {
	case queue.TopicVersionStored:
		ev, err := queue.ParseVersionStored(msg)
		if err != nil {
			break
		}

		l.Info().
			Str("audit", topic).
			Int64("version_id", ev.Payload.VersionID).
			Str("file", ev.Payload.FileName).
			Str("actor", ev.Payload.Actor).
			Bool("filled", ev.Payload.Filled).
			Str("hash", ev.Payload.Blob.Hash).
			Msg("version stored")

		return
	case queue.TopicVersionDisabled, queue.TopicVersionRestored, queue.TopicVersionPurged:
		ev, err := queue.ParseVersionLifecycle(msg)
		if err != nil {
			break
		}

		l.Info().
			Str("audit", topic).
			Int64("version_id", ev.Payload.VersionID).
			Str("state", ev.Payload.State).
			Str("actor", ev.Payload.Actor).
			Bool("blob_removed", ev.Payload.BlobRemoved).
			Msg("version lifecycle")

		return
	}

	l.Info().
		Str("audit", topic).
		RawJSON("event", msg.Payload).
		Msg("catalog event")
}
