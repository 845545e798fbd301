// Package blob provides content-addressed binary storage. Objects are keyed
// by their SHA-256 digest so identical content always maps to the same key,
// regardless of backend.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dkozyrev/softvault/pkg/configs"
)

// Store is the backend contract for content-addressed blobs.
type Store interface {
	// Put writes an object under the given key. Writing the same key twice
	// is harmless: content addressing guarantees identical bytes.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns a reader for the object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Stat returns the object size, or an error when the key is absent.
	Stat(ctx context.Context, key string) (int64, error)
	// Delete removes the object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Walk visits every stored object key with its modification time.
	Walk(ctx context.Context, fn func(key string, modTime time.Time) error) error
	// Close releases backend resources.
	Close() error
}

type Client struct {
	Store
}

// Factory builds a Store from the blob configuration.
type Factory func(ctx context.Context, cfg *configs.BlobConfig) (Store, error)

var factories = map[configs.BlobType]Factory{}

// RegisterFactory registers a blob backend factory.
func RegisterFactory(t configs.BlobType, f Factory) {
	factories[t] = f
}

// New creates a client for the configured backend.
func New(ctx context.Context, cfg *configs.BlobConfig) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported blob store type: %s", cfg.Type)
	}

	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init blob store (%s): %w", cfg.Type, err)
	}

	return &Client{Store: store}, nil
}

// BuildKey maps a content digest and the original file name to the storage
// key {digest[0:2]}/{digest[2:4]}/{base}_{digest}.{ext}. The two fan-out
// levels keep directory sizes bounded on filesystem backends. The function
// is pure: equal inputs always produce equal keys.
func BuildKey(digest, originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if stem == "" {
		stem = "file"
	}

	name := stem + "_" + digest + ext

	return path.Join(digest[0:2], digest[2:4], name)
}
