package minio

import (
	"errors"
	"time"
)

// Config represents the configuration for MinIO client
type Config struct {
	// Enabled turns blob storage on. Without it uploads are refused and
	// listings carry no download URLs.
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the S3-compatible object storage endpoint, e.g. "localhost:9000"
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_key"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`

	// Bucket holds every attachment blob
	Bucket string `mapstructure:"bucket"`

	// PresignExpiry is how long presigned download URLs stay valid
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Endpoint:      "localhost:9000",
		Bucket:        "media",
		PresignExpiry: 15 * time.Minute,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("minio: endpoint is required")
	}
	if c.AccessKeyID == "" {
		return errors.New("minio: access key ID is required")
	}
	if c.SecretAccessKey == "" {
		return errors.New("minio: secret access key is required")
	}
	if err := ValidateBucketName(c.Bucket); err != nil {
		return err
	}
	if c.PresignExpiry <= 0 || c.PresignExpiry > 7*24*time.Hour {
		return errors.New("minio: presign_expiry must be between 1s and 7 days")
	}
	return nil
}
