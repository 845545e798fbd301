package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/dkozyrev/softvault/pkg/internal/storage/mq"
	"github.com/dkozyrev/softvault/pkg/queue"
)

type fakeSubscriber struct {
	mu     sync.Mutex
	topics map[string]chan *message.Message
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{topics: make(map[string]chan *message.Message)}
}

func (s *fakeSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *message.Message, 1)
	s.topics[topic] = ch

	return ch, nil
}

func (s *fakeSubscriber) Close() error { return nil }

func (s *fakeSubscriber) topic(name string) chan *message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.topics[name]
}

func TestConsumerSubscribesAllTopics(t *testing.T) {
	sub := newFakeSubscriber()
	client := mq.NewWithPubSub(nil, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := NewConsumer(client).Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sub.mu.Lock()
	got := len(sub.topics)
	sub.mu.Unlock()

	if got != len(queue.CatalogTopics) {
		t.Fatalf("subscribed to %d topics, want %d", got, len(queue.CatalogTopics))
	}

	for _, topic := range queue.CatalogTopics {
		if sub.topic(topic) == nil {
			t.Errorf("topic %q not subscribed", topic)
		}
	}
}

func TestConsumerAcksEvents(t *testing.T) {
	sub := newFakeSubscriber()
	client := mq.NewWithPubSub(nil, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := NewConsumer(client).Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	msg, err := queue.NewWatermillMessage(queue.TopicVersionStored, queue.VersionStoredPayload{
		VersionID: 7,
		FileName:  "agent-1.2.3.exe",
		Actor:     "petrov",
		Filled:    true,
	})
	if err != nil {
		t.Fatalf("NewWatermillMessage: %v", err)
	}

	sub.topic(queue.TopicVersionStored) <- msg

	select {
	case <-msg.Acked():
	case <-time.After(2 * time.Second):
		t.Fatal("event was not acked")
	}
}

func TestConsumerWithoutClient(t *testing.T) {
	if err := NewConsumer(nil).Start(context.Background()); err != nil {
		t.Fatalf("Start without a client: %v", err)
	}
}
