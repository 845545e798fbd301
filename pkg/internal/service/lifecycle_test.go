package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	"github.com/dkozyrev/softvault/pkg/internal/storage/mq"
	"github.com/dkozyrev/softvault/pkg/queue"
)

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturePublisher) Publish(topic string, _ ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.topics = append(p.topics, topic)

	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}

	return n
}

// enableCatalogEvents flips the publishing toggles for the test and puts
// them back afterwards.
func enableCatalogEvents(t *testing.T) {
	t.Helper()

	ev := &configs.GetConfig().Events
	saved := *ev

	ev.Enabled = true
	ev.Catalog.VersionDisabled = true
	ev.Catalog.VersionRestored = true

	t.Cleanup(func() { *ev = saved })
}

func newTestLifecycle(t *testing.T) (*LifecycleService, *IngestService) {
	t.Helper()

	ingest := newTestIngest(t)

	return &LifecycleService{ingest.Service}, ingest
}

func TestDisableHidesVersion(t *testing.T) {
	lc, ingest := newTestLifecycle(t)
	id := mustStore(t, ingest, "ivanov", "victim.bin", []byte("to be disabled"))

	if err := lc.Disable(context.Background(), id, "ivanov"); err != nil {
		t.Fatal(err)
	}

	var version model.Version
	if err := lc.dbClient.GetDB().First(&version, id).Error; err != nil {
		t.Fatal(err)
	}

	if !version.IsDisabled {
		t.Fatal("version must be disabled")
	}
}

func TestRestoreBringsVersionBack(t *testing.T) {
	lc, ingest := newTestLifecycle(t)
	id := mustStore(t, ingest, "ivanov", "victim.bin", []byte("round trip"))

	if err := lc.Disable(context.Background(), id, "ivanov"); err != nil {
		t.Fatal(err)
	}

	if err := lc.Restore(context.Background(), id, "ivanov"); err != nil {
		t.Fatal(err)
	}

	var version model.Version
	if err := lc.dbClient.GetDB().First(&version, id).Error; err != nil {
		t.Fatal(err)
	}

	if version.IsDisabled {
		t.Fatal("restored version must be visible again")
	}
}

func TestPurgeRequiresDisabled(t *testing.T) {
	lc, ingest := newTestLifecycle(t)
	id := mustStore(t, ingest, "ivanov", "active.bin", []byte("still active"))

	err := lc.Purge(context.Background(), id, "admin")
	if !errors.Is(err, ErrNotDisabled) {
		t.Fatalf("expected ErrNotDisabled, got %v", err)
	}

	var count int64
	lc.dbClient.GetDB().Model(&model.Version{}).Count(&count)

	if count != 1 {
		t.Fatal("active version must survive a purge attempt")
	}
}

func TestPurgeRemovesRowAndBlob(t *testing.T) {
	lc, ingest := newTestLifecycle(t)
	data := []byte("purge me")
	id := mustStore(t, ingest, "ivanov", "doomed.bin", data)

	var version model.Version
	if err := lc.dbClient.GetDB().First(&version, id).Error; err != nil {
		t.Fatal(err)
	}

	key := blob.BuildKey(version.ContentHash, version.StoredName)

	if err := lc.Disable(context.Background(), id, "admin"); err != nil {
		t.Fatal(err)
	}

	if err := lc.Purge(context.Background(), id, "admin"); err != nil {
		t.Fatal(err)
	}

	var count int64
	lc.dbClient.GetDB().Model(&model.Version{}).Count(&count)

	if count != 0 {
		t.Fatal("purged version row must be gone")
	}

	if _, err := lc.blobClient.Stat(context.Background(), key); err == nil {
		t.Fatal("blob must be removed with its last reference")
	}

	// Properties go with the version.
	lc.dbClient.GetDB().Model(&model.VersionProperty{}).Where("version_id = ?", id).Count(&count)

	if count != 0 {
		t.Fatal("purged version must not leave properties behind")
	}
}

func TestLifecycleEventsOnlyOnTransition(t *testing.T) {
	enableCatalogEvents(t)

	lc, ingest := newTestLifecycle(t)
	pub := &capturePublisher{}
	lc.mqClient = mq.NewWithPubSub(pub, nil)

	id := mustStore(t, ingest, "ivanov", "toggle.bin", []byte("state machine"))

	for range 3 {
		if err := lc.Disable(context.Background(), id, "ivanov"); err != nil {
			t.Fatal(err)
		}
	}

	if got := pub.count(queue.TopicVersionDisabled); got != 1 {
		t.Fatalf("repeated disables published %d events, want 1", got)
	}

	for range 3 {
		if err := lc.Restore(context.Background(), id, "ivanov"); err != nil {
			t.Fatal(err)
		}
	}

	if got := pub.count(queue.TopicVersionRestored); got != 1 {
		t.Fatalf("repeated restores published %d events, want 1", got)
	}
}

func TestPurgeMissingVersion(t *testing.T) {
	lc, _ := newTestLifecycle(t)

	if err := lc.Purge(context.Background(), 424242, "admin"); err == nil {
		t.Fatal("purging an unknown version must fail")
	}
}
