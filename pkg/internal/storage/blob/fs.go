package blob

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dkozyrev/softvault/pkg/configs"
	nlog "github.com/dkozyrev/softvault/pkg/log"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FSStore keeps blobs on the local filesystem under a configured root.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store, creating the root when missing.
func NewFSStore(ctx context.Context, cfg *configs.BlobConfig) (Store, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}

	nlog.Logger().Info().Str("root", root).Msg("filesystem blob store ready")

	return &FSStore{root: root}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put writes to a temp file in the target directory and renames it into
// place, so readers never observe a partially written blob.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	dst := s.path(key)

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("write blob: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("close temp blob: %w", err)
	}

	if size >= 0 && written != size {
		os.Remove(tmp.Name())

		return fmt.Errorf("blob size mismatch: wrote %d, expected %d", written, size)
	}

	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("chmod blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("finalize blob: %w", err)
	}

	return nil
}

func (s *FSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}

	return f, nil
}

func (s *FSStore) Stat(ctx context.Context, key string) (int64, error) {
	info, err := os.Stat(s.path(key))
	if err != nil {
		return 0, fmt.Errorf("stat blob %s: %w", key, err)
	}

	return info.Size(), nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (s *FSStore) Walk(ctx context.Context, fn func(key string, modTime time.Time) error) error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		return fn(filepath.ToSlash(rel), info.ModTime())
	})
}

func (s *FSStore) Close() error {
	return nil
}

func init() {
	RegisterFactory(configs.BlobTypeFS, NewFSStore)
}
