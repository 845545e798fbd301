package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/extract"
	"github.com/dkozyrev/softvault/pkg/internal/model"
	blobc "github.com/dkozyrev/softvault/pkg/internal/storage/blob"
	dbc "github.com/dkozyrev/softvault/pkg/internal/storage/db"
)

// newTestService wires an in-memory database and a temp-dir blob store.
// No message queue: event publishing is best-effort and skips silently.
func newTestService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := gdb.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := blobc.NewFSStore(context.Background(), &configs.BlobConfig{
		Type: configs.BlobTypeFS,
		Root: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}

	return &Service{
		dbClient:   &dbc.Client{DB: gdb},
		blobClient: &blobc.Client{Store: store},
	}
}

func newTestIngest(t *testing.T) *IngestService {
	t.Helper()
	return &IngestService{Service: newTestService(t), extractors: extract.NewRegistry()}
}

func mustStore(t *testing.T, s *IngestService, user, name string, data []byte) int64 {
	t.Helper()

	resp := s.StoreBatch(context.Background(), user, []UploadedFile{{Name: name, Data: data}})
	if len(resp.Success) != 1 {
		t.Fatalf("expected 1 success, got %+v", resp)
	}

	return resp.Success[0].FileVersionID
}
