package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// BlobType selects the backend for content-addressed file storage.
type BlobType string

const (
	BlobTypeFS BlobType = "fs"
	BlobTypeS3 BlobType = "s3"
)

const (
	DefaultBlobType      = BlobTypeFS
	DefaultBlobRoot      = "data/files"
	DefaultOrphanSweep   = true
	DefaultOrphanMinAge  = 24 // hours
	DefaultOrphanCron    = "0 3 * * *"
	DefaultOrphanRemoval = false
)

// BlobConfig holds settings for the content-addressed blob store.
// The upload root is explicit configuration handed to the ingestion
// components; nothing in the pipeline reads mutable global state.
type BlobConfig struct {
	Type BlobType `mapstructure:"type" rule:"oneof=fs s3"`
	// Root is the upload root for the fs backend and the key prefix for s3.
	Root string       `mapstructure:"root"`
	S3   BlobS3Config `mapstructure:"s3"`
	// Orphan sweep: files on disk with no catalog row are tolerated but
	// periodically reported and optionally removed.
	OrphanSweepEnabled bool   `mapstructure:"orphan_sweep_enabled"`
	OrphanMinAgeHours  int    `mapstructure:"orphan_min_age_hours" rule:"min=1"`
	OrphanSweepCron    string `mapstructure:"orphan_sweep_cron"`
	OrphanRemove       bool   `mapstructure:"orphan_remove"`
}

// BlobS3Config holds MinIO/S3 settings for the s3 backend.
type BlobS3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
}

const (
	DefaultS3Endpoint        = "localhost:9000"
	DefaultS3AccessKeyID     = "minioadmin"
	DefaultS3SecretAccessKey = "minioadmin"
	DefaultS3UseSSL          = false
	DefaultS3Bucket          = "softvault"
	DefaultS3Region          = "us-east-1"
)

// GetEndpointURL returns the full endpoint URL for the s3 backend.
func (c *BlobS3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

func (c *BlobConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("blob.type", DefaultBlobType)
	v.SetDefault("blob.root", DefaultBlobRoot)
	v.SetDefault("blob.orphan_sweep_enabled", DefaultOrphanSweep)
	v.SetDefault("blob.orphan_min_age_hours", DefaultOrphanMinAge)
	v.SetDefault("blob.orphan_sweep_cron", DefaultOrphanCron)
	v.SetDefault("blob.orphan_remove", DefaultOrphanRemoval)

	v.SetDefault("blob.s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("blob.s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("blob.s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("blob.s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("blob.s3.bucket", DefaultS3Bucket)
	v.SetDefault("blob.s3.region", DefaultS3Region)
}
