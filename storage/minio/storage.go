package minio

import (
	"context"
	"io"
	"log/slog"

	"github.com/manavc-13/KIIT-Mailer/storage"
	"github.com/minio/minio-go/v7"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ storage.Storage = (*Storage)(nil)

var tracer = otel.Tracer("github.com/manavc-13/KIIT-Mailer/storage/minio")

// Storage implements storage.Storage on top of an S3-compatible bucket.
type Storage struct {
	client *Client
	logger *slog.Logger
}

// NewDefault connects with cfg.
func NewDefault(cfg Config) (*Storage, error) {
	client, err := NewClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	return &Storage{client: client, logger: client.logger}, nil
}

// Get retrieves an object. An empty bucket selects the configured default.
func (s *Storage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	if bucket == "" {
		bucket = s.client.cfg.DefaultBucket
	}

	ctx, span := tracer.Start(ctx, "S3.Get", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("bucket", bucket),
		attribute.String("key", key),
	)

	client, err := s.client.minio()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, &storage.StorageError{Code: storage.CodeInternalError, Message: err.Error(), Bucket: bucket, Key: key}
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, toStorageError(err, bucket, key)
	}

	// GetObject is lazy, Stat surfaces missing keys.
	stat, err := obj.Stat()
	if err != nil {
		if closeErr := obj.Close(); closeErr != nil {
			s.logger.With("error", closeErr).Error("failed to close object after stat error")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, toStorageError(err, bucket, key)
	}

	span.SetAttributes(attribute.Int64("size", stat.Size))
	span.SetStatus(codes.Ok, "")

	return obj, &storage.ObjectInfo{
		Key:          key,
		Size:         stat.Size,
		LastModified: stat.LastModified,
		ETag:         stat.ETag,
		ContentType:  stat.ContentType,
	}, nil
}

// Close closes the storage connection.
func (s *Storage) Close() error {
	return s.client.Close()
}
