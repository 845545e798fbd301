package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dkozyrev/softvault/pkg/configs"
	nlog "github.com/dkozyrev/softvault/pkg/log"
)

// S3Store keeps blobs in a MinIO/S3 bucket using the same key layout as the
// filesystem backend.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Store creates an S3 store, creating the bucket when missing.
func NewS3Store(ctx context.Context, cfg *configs.BlobConfig) (Store, error) {
	s3cfg := cfg.S3

	endpoint := s3cfg.Endpoint
	useSSL := s3cfg.UseSSL
	// Full scheme endpoints (http:// or https://) are allowed.
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: s3cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("softvault", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, s3cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", s3cfg.Bucket, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, s3cfg.Bucket, minio.MakeBucketOptions{Region: s3cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", s3cfg.Bucket, err)
		}

		nlog.Logger().Info().Str("bucket", s3cfg.Bucket).Msg("bucket created")
	}

	nlog.Logger().Info().
		Str("endpoint", s3cfg.Endpoint).
		Str("bucket", s3cfg.Bucket).
		Msg("s3 blob store ready")

	return &S3Store{client: cli, bucket: s3cfg.Bucket, prefix: strings.Trim(cfg.Root, "/")}, nil
}

func (s *S3Store) object(key string) string {
	if s.prefix == "" {
		return key
	}

	return path.Join(s.prefix, key)
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, s.object(key), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	// GetObject is lazy, surface missing keys now.
	if _, err := obj.Stat(); err != nil {
		obj.Close()

		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	return obj, nil
}

func (s *S3Store) Stat(ctx context.Context, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.object(key), minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("stat object %s: %w", key, err)
	}

	return info.Size, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.object(key), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

func (s *S3Store) Walk(ctx context.Context, fn func(key string, modTime time.Time) error) error {
	opts := minio.ListObjectsOptions{Recursive: true}
	if s.prefix != "" {
		opts.Prefix = s.prefix + "/"
	}

	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return obj.Err
		}

		key := obj.Key
		if s.prefix != "" {
			key = strings.TrimPrefix(key, s.prefix+"/")
		}

		if err := fn(key, obj.LastModified); err != nil {
			return err
		}
	}

	return nil
}

func (s *S3Store) Close() error {
	return nil
}

func init() {
	RegisterFactory(configs.BlobTypeS3, NewS3Store)
}
