package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dkozyrev/softvault/pkg/cache"
)

type directoryEntry struct {
	User string `json:"user"`
	Role string `json:"role"`
}

// mockKVStore is an in-memory KVStore for tests.
type mockKVStore struct {
	data map[string][]byte
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{
		data: make(map[string][]byte),
	}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, exists := m.data[key]; exists {
		return value, nil
	}

	return nil, fmt.Errorf("key not found")
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockKVStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockKVStore) Exists(ctx context.Context, key string) (bool, error) {
	_, exists := m.data[key]
	return exists, nil
}

func (m *mockKVStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (m *mockKVStore) Close() error {
	return nil
}

func TestNewCache(t *testing.T) {
	mockStore := newMockKVStore()

	c := cache.NewCache(mockStore)
	if c == nil {
		t.Fatal("NewCache returned nil")
	}
}

func TestCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newMockKVStore())

	entry := directoryEntry{User: "jdoe", Role: "moderator"}

	if err := cache.Set(ctx, c, "role:jdoe", entry, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := cache.Get[directoryEntry](ctx, c, "role:jdoe")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != entry {
		t.Errorf("Get = %+v, want %+v", got, entry)
	}
}

func TestCacheGetMiss(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newMockKVStore())

	if _, err := cache.Get[directoryEntry](ctx, c, "absent"); err == nil {
		t.Error("expected error on cache miss, got nil")
	}
}

func TestCacheGetOrSet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newMockKVStore())

	calls := 0
	getter := func() (directoryEntry, error) {
		calls++
		return directoryEntry{User: "jdoe", Role: "admin"}, nil
	}

	for range 2 {
		got, err := cache.GetOrSet(ctx, c, "role:jdoe", getter, time.Minute)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}

		if got.Role != "admin" {
			t.Errorf("GetOrSet role = %q, want %q", got.Role, "admin")
		}
	}

	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}
}

func TestCacheGetOrSetGetterError(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newMockKVStore())

	wantErr := errors.New("directory unavailable")

	_, err := cache.GetOrSet(ctx, c, "role:ghost", func() (directoryEntry, error) {
		return directoryEntry{}, wantErr
	}, time.Minute)
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet error = %v, want %v", err, wantErr)
	}
}

func TestCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newMockKVStore())

	if err := cache.Set(ctx, c, "k", directoryEntry{User: "x"}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, err := c.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if exists {
		t.Error("key still exists after delete")
	}
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newMockKVStore())

	for i := range 3 {
		key := fmt.Sprintf("k%d", i)
		if err := cache.Set(ctx, c, key, directoryEntry{User: key}, 0); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	for i := range 3 {
		key := fmt.Sprintf("k%d", i)

		exists, err := c.Exists(ctx, key)
		if err != nil {
			t.Fatalf("Exists %s: %v", key, err)
		}

		if exists {
			t.Errorf("key %s survived Clear", key)
		}
	}
}
