package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore uploads and downloads files.
type ObjectStore interface {
	// Upload stores the file at localPath under key in the default bucket
	// and returns its s3:// URL.
	Upload(ctx context.Context, localPath, key, contentType string) (string, error)
	// Download fetches the object at an s3:// URL into localPath.
	Download(ctx context.Context, url, localPath string) error
}

// Client is an ObjectStore backed by minio-go.
type Client struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

var _ ObjectStore = (*Client)(nil)

// New creates a client for cfg.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &Client{client: mc, bucket: cfg.Bucket, logger: logger}, nil
}

// Bucket returns the default bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

// EnsureBucket creates the default bucket when it does not exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	return c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

// Upload implements ObjectStore.
func (c *Client) Upload(ctx context.Context, localPath, key, contentType string) (string, error) {
	loc := Location{Bucket: c.bucket, Key: key}
	info, err := c.client.FPutObject(ctx, loc.Bucket, loc.Key, localPath, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to %s: %w", localPath, loc, err)
	}
	c.logger.Debug("object uploaded",
		slog.String("url", loc.String()),
		slog.Int64("size", info.Size))
	return loc.String(), nil
}

// Download implements ObjectStore.
func (c *Client) Download(ctx context.Context, url, localPath string) error {
	loc, err := ParseURL(url)
	if err != nil {
		return err
	}
	if err := c.client.FGetObject(ctx, loc.Bucket, loc.Key, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	c.logger.Debug("object downloaded", slog.String("url", url), slog.String("path", localPath))
	return nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
