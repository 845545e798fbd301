package kv

import (
	"context"
	"testing"
	"time"
)

func newMemory(t *testing.T) KVStore {
	t.Helper()

	store, err := NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewMemoryKV: %v", err)
	}

	return store
}

func TestMemoryKVSetGet(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	if err := store.Set(ctx, "role:jdoe", []byte("moderator"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "role:jdoe")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(got) != "moderator" {
		t.Errorf("Get = %q, want %q", got, "moderator")
	}
}

func TestMemoryKVGetMissing(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	if _, err := store.Get(ctx, "absent"); err == nil {
		t.Error("expected error for missing key, got nil")
	}
}

func TestMemoryKVDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, err := store.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if exists {
		t.Error("key still exists after delete")
	}
}

func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	if err := store.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Not expired yet.
	if _, err := store.Get(ctx, "short"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	// Expiry granularity is one second, so wait past it.
	time.Sleep(1100 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); err == nil {
		t.Error("expected expired key to be gone, got value")
	}

	exists, err := store.Exists(ctx, "short")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if exists {
		t.Error("expired key still reported as existing")
	}
}

func TestTTLEnvelopeRoundTrip(t *testing.T) {
	val := []byte(`{"role":"admin"}`)

	encoded, wrapped, err := encodeWithTTL(val, time.Hour)
	if err != nil {
		t.Fatalf("encodeWithTTL: %v", err)
	}

	if !wrapped {
		t.Fatal("expected value to be wrapped")
	}

	got, expired, wasWrapped, err := decodeWithTTL(encoded, time.Now())
	if err != nil {
		t.Fatalf("decodeWithTTL: %v", err)
	}

	if expired || !wasWrapped {
		t.Errorf("decodeWithTTL expired=%v wrapped=%v, want false/true", expired, wasWrapped)
	}

	if string(got) != string(val) {
		t.Errorf("decodeWithTTL = %q, want %q", got, val)
	}
}

func TestTTLEnvelopePlainValue(t *testing.T) {
	val := []byte("plain")

	got, expired, wrapped, err := decodeWithTTL(val, time.Now())
	if err != nil {
		t.Fatalf("decodeWithTTL: %v", err)
	}

	if expired || wrapped {
		t.Errorf("plain value decoded as expired=%v wrapped=%v", expired, wrapped)
	}

	if string(got) != "plain" {
		t.Errorf("decodeWithTTL = %q, want %q", got, "plain")
	}
}

func TestRegisteredKVTypes(t *testing.T) {
	types := GetRegisteredKVTypes()

	found := map[KVType]bool{}
	for _, tp := range types {
		found[tp] = true
	}

	if !found[KVTypeMemory] {
		t.Error("memory backend not registered")
	}
}
