package minio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// Client wraps minio.Client.
type Client struct {
	client *minio.Client
	cfg    Config
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// ClientOptions contains options for client creation.
type ClientOptions struct {
	Logger *slog.Logger
}

// NewClient creates a client and verifies that the default bucket is reachable.
func NewClient(cfg Config, options *ClientOptions) (*Client, error) {
	if options == nil {
		options = &ClientOptions{}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	logger := options.Logger.WithGroup("s3")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Region: cfg.Region,
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create S3 client")
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if cfg.DefaultBucket != "" {
		ok, err := client.BucketExists(ctx, cfg.DefaultBucket)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to S3 storage")
		}
		if !ok {
			return nil, errors.Errorf("attachment bucket %q does not exist", cfg.DefaultBucket)
		}
	}

	logger.Info("S3 client initialized", "endpoint", cfg.Endpoint, "bucket", cfg.DefaultBucket)

	return &Client{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (c *Client) minio() (*minio.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || c.client == nil {
		return nil, errors.New("s3 client is closed")
	}
	return c.client, nil
}

// Close marks the client closed. minio.Client holds no persistent connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
