package jobs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
)

func sweepFixture(t *testing.T) (*gorm.DB, blob.Store, string) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := gdb.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()

	store, err := blob.NewFSStore(context.Background(), &configs.BlobConfig{
		Type: configs.BlobTypeFS,
		Root: root,
	})
	if err != nil {
		t.Fatal(err)
	}

	return gdb, store, root
}

func putBlob(t *testing.T, store blob.Store, name string, data []byte) (string, string) {
	t.Helper()

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	key := blob.BuildKey(digest, name)

	if err := store.Put(context.Background(), key, bytes.NewReader(data), int64(len(data)), ""); err != nil {
		t.Fatal(err)
	}

	return key, digest
}

func backdate(t *testing.T, root, key string) {
	t.Helper()

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(root, filepath.FromSlash(key)), old, old); err != nil {
		t.Fatal(err)
	}
}

func TestSweepFindsOrphans(t *testing.T) {
	gdb, store, root := sweepFixture(t)

	// Referenced blob: has a version row.
	refKey, refDigest := putBlob(t, store, "kept.bin", []byte("kept"))
	backdate(t, root, refKey)

	v := model.Version{StoredName: "kept.bin", ContentHash: refDigest, FileSize: 4, UploadedAt: time.Now()}
	if err := gdb.Create(&v).Error; err != nil {
		t.Fatal(err)
	}

	// Orphan: blob without a row.
	orphanKey, _ := putBlob(t, store, "lost.bin", []byte("lost"))
	backdate(t, root, orphanKey)

	found, removed, err := SweepOrphans(context.Background(), gdb, store, time.Hour, false)
	if err != nil {
		t.Fatal(err)
	}

	if found != 1 || removed != 0 {
		t.Fatalf("report mode: found=%d removed=%d", found, removed)
	}

	// Report mode leaves the orphan on disk.
	if _, err := store.Stat(context.Background(), orphanKey); err != nil {
		t.Fatal("orphan must survive report mode")
	}
}

func TestSweepRemovesWhenConfigured(t *testing.T) {
	gdb, store, root := sweepFixture(t)

	orphanKey, _ := putBlob(t, store, "lost.bin", []byte("lost"))
	backdate(t, root, orphanKey)

	found, removed, err := SweepOrphans(context.Background(), gdb, store, time.Hour, true)
	if err != nil {
		t.Fatal(err)
	}

	if found != 1 || removed != 1 {
		t.Fatalf("remove mode: found=%d removed=%d", found, removed)
	}

	if _, err := store.Stat(context.Background(), orphanKey); err == nil {
		t.Fatal("orphan must be gone")
	}
}

func TestSweepSkipsYoungBlobs(t *testing.T) {
	gdb, store, _ := sweepFixture(t)

	// Fresh blob without a row: an upload may still be registering it.
	putBlob(t, store, "inflight.bin", []byte("inflight"))

	found, _, err := SweepOrphans(context.Background(), gdb, store, time.Hour, true)
	if err != nil {
		t.Fatal(err)
	}

	if found != 0 {
		t.Fatalf("young blob must be skipped, found=%d", found)
	}
}

func TestDigestFromKey(t *testing.T) {
	digest := "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899"

	if got := digestFromKey("aa/bb/setup_" + digest + ".exe"); got != digest {
		t.Fatalf("got %q", got)
	}

	if got := digestFromKey("aa/bb/noext_" + digest); got != digest {
		t.Fatalf("no-extension key: got %q", got)
	}

	if got := digestFromKey("aa/bb/random-file.txt"); got != "" {
		t.Fatalf("foreign file must yield no digest, got %q", got)
	}
}
