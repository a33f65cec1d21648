package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Client wraps the MinIO client bound to a single bucket
type Client struct {
	client *minio.Client
	config *Config
	logger *logger.Logger
}

// NewClient creates a new MinIO client and makes sure the bucket exists
func NewClient(ctx context.Context, cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, wrapError("NewClient", err, cfg.Bucket, "")
	}

	c := &Client{client: minioClient, config: cfg, logger: log}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("minio client initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return wrapError("BucketExists", err, c.config.Bucket, "")
	}
	if exists {
		return nil
	}

	err = c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region})
	if err != nil {
		return wrapError("MakeBucket", err, c.config.Bucket, "")
	}
	c.logger.Info("bucket created", zap.String("bucket", c.config.Bucket))
	return nil
}

// Put uploads an object
func (c *Client) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	if err := ValidateObjectName(objectName); err != nil {
		return err
	}

	info, err := c.client.PutObject(ctx, c.config.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return wrapError("PutObject", err, c.config.Bucket, objectName)
	}

	c.logger.Debug("object uploaded",
		zap.String("object", objectName),
		zap.Int64("size", info.Size),
	)
	return nil
}

// Remove deletes an object
func (c *Client) Remove(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.config.Bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		wrapped := wrapError("RemoveObject", err, c.config.Bucket, objectName)
		if IsNotFound(wrapped) {
			return nil
		}
		return wrapped
	}
	return nil
}

// PresignedGet returns a time limited download URL for an object. The
// filename is suggested to the browser through Content-Disposition.
func (c *Client) PresignedGet(ctx context.Context, objectName, filename string) (*url.URL, error) {
	params := url.Values{}
	if filename != "" {
		params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", filename))
	}

	u, err := c.client.PresignedGetObject(ctx, c.config.Bucket, objectName, c.config.PresignExpiry, params)
	if err != nil {
		return nil, wrapError("PresignedGetObject", err, c.config.Bucket, objectName)
	}
	return u, nil
}

// Ping checks that the bucket is reachable
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.client.BucketExists(ctx, c.config.Bucket); err != nil {
		return wrapError("Ping", err, c.config.Bucket, "")
	}
	return nil
}
