package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	"github.com/dkozyrev/softvault/pkg/internal/types"
)

func TestStoreBatchRegistersVersion(t *testing.T) {
	s := newTestIngest(t)
	data := []byte("not a real binary, just bytes")

	resp := s.StoreBatch(context.Background(), "ivanov", []UploadedFile{{Name: "tool-2.1.0.bin", Data: data}})

	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", resp.Errors)
	}

	if len(resp.Success) != 1 {
		t.Fatalf("expected 1 success, got %d", len(resp.Success))
	}

	item := resp.Success[0]
	if item.FileVersionName != "tool-2.1.0.bin" {
		t.Fatalf("unexpected name %q", item.FileVersionName)
	}

	var version model.Version
	if err := s.dbClient.GetDB().First(&version, item.FileVersionID).Error; err != nil {
		t.Fatalf("version row missing: %v", err)
	}

	sum := sha256.Sum256(data)
	if version.ContentHash != hex.EncodeToString(sum[:]) {
		t.Fatalf("stored hash %q does not match content", version.ContentHash)
	}

	if version.FileSize != int64(len(data)) {
		t.Fatalf("size %d != %d", version.FileSize, len(data))
	}

	if version.UploadedBy != "ivanov" {
		t.Fatalf("uploader %q", version.UploadedBy)
	}

	key := blob.BuildKey(version.ContentHash, version.StoredName)
	if size, err := s.blobClient.Stat(context.Background(), key); err != nil || size != int64(len(data)) {
		t.Fatalf("blob missing under content key: size=%d err=%v", size, err)
	}
}

func TestStoreBatchRejectsDuplicateContent(t *testing.T) {
	s := newTestIngest(t)
	data := []byte("same content twice")

	mustStore(t, s, "ivanov", "first-name.bin", data)

	resp := s.StoreBatch(context.Background(), "petrov", []UploadedFile{{Name: "other-name.bin", Data: data}})

	if len(resp.Success) != 0 {
		t.Fatalf("duplicate must not succeed: %+v", resp.Success)
	}

	if len(resp.Errors) != 1 {
		t.Fatalf("expected 1 error, got %+v", resp.Errors)
	}

	if resp.Errors[0].Msg != types.MsgDuplicateFile {
		t.Fatalf("unexpected message %q", resp.Errors[0].Msg)
	}

	if resp.Errors[0].Number != 1 {
		t.Fatalf("expected file number 1, got %d", resp.Errors[0].Number)
	}

	var count int64
	s.dbClient.GetDB().Model(&model.Version{}).Count(&count)

	if count != 1 {
		t.Fatalf("expected a single catalog row, got %d", count)
	}
}

func TestStoreBatchEmptyFile(t *testing.T) {
	s := newTestIngest(t)

	resp := s.StoreBatch(context.Background(), "ivanov", []UploadedFile{{Name: "empty.bin", Data: nil}})

	if len(resp.Errors) != 1 || resp.Errors[0].Msg != types.MsgEmptyFile {
		t.Fatalf("expected empty-file error, got %+v", resp)
	}
}

func TestStoreBatchFilesFailIndependently(t *testing.T) {
	s := newTestIngest(t)

	resp := s.StoreBatch(context.Background(), "ivanov", []UploadedFile{
		{Name: "empty.bin", Data: nil},
		{Name: "good.bin", Data: []byte("payload")},
	})

	if len(resp.Success) != 1 {
		t.Fatalf("good file must survive a bad sibling: %+v", resp)
	}

	if len(resp.Errors) != 1 || resp.Errors[0].Number != 1 {
		t.Fatalf("bad file must be numbered by form position: %+v", resp.Errors)
	}
}

func TestStoreBatchFilenameFallbackFillsVersion(t *testing.T) {
	s := newTestIngest(t)

	// Not a PE file, so the version number comes from the file name. Both
	// title and number present means the version arrives filled.
	id := mustStore(t, s, "ivanov", "acme-agent-2.1.0.14.bin", []byte("opaque payload"))

	var version model.Version
	if err := s.dbClient.GetDB().First(&version, id).Error; err != nil {
		t.Fatal(err)
	}

	if version.VersionString != "2.1.0.14" {
		t.Fatalf("expected version from file name, got %q", version.VersionString)
	}

	if !version.IsFilled {
		t.Fatal("expected version to arrive filled")
	}

	if version.ProductID == 0 {
		t.Fatal("filled version must reference a product")
	}

	var product model.Product
	if err := s.dbClient.GetDB().First(&product, version.ProductID).Error; err != nil {
		t.Fatal(err)
	}

	if product.Title != "acme agent" {
		t.Fatalf("unexpected product title %q", product.Title)
	}
}

func TestStoreBatchUnparsableStaysUnfilled(t *testing.T) {
	s := newTestIngest(t)

	id := mustStore(t, s, "ivanov", "readme.txt", []byte("plain text"))

	var version model.Version
	if err := s.dbClient.GetDB().First(&version, id).Error; err != nil {
		t.Fatal(err)
	}

	if version.IsFilled {
		t.Fatal("no metadata source, version must stay unfilled")
	}

	if version.ProductID != 0 {
		t.Fatalf("unfilled version must not reference a product, got %d", version.ProductID)
	}
}

func TestBuildKeyLayout(t *testing.T) {
	s := newTestIngest(t)
	data := []byte("layout check")

	id := mustStore(t, s, "ivanov", "thing.bin", data)

	var version model.Version
	if err := s.dbClient.GetDB().First(&version, id).Error; err != nil {
		t.Fatal(err)
	}

	key := blob.BuildKey(version.ContentHash, "thing.bin")
	want := version.ContentHash[0:2] + "/" + version.ContentHash[2:4] + "/thing_" + version.ContentHash + ".bin"

	if key != want {
		t.Fatalf("key %q, want %q", key, want)
	}
}
