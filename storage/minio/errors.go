package minio

import (
	"strings"

	"github.com/manavc-13/KIIT-Mailer/storage"
	"github.com/minio/minio-go/v7"
)

// toStorageError maps S3 error responses to storage error codes.
func toStorageError(err error, bucket, key string) error {
	if err == nil {
		return nil
	}

	code := minio.ToErrorResponse(err).Code
	if code == "" {
		code = err.Error()
	}

	se := &storage.StorageError{Err: err, Bucket: bucket, Key: key}
	switch {
	case strings.Contains(code, "NoSuchBucket"):
		se.Code, se.Message = storage.CodeBucketNotFound, "bucket not found"
	case strings.Contains(code, "NoSuchKey"), strings.Contains(code, "NotFound"):
		se.Code, se.Message = storage.CodeNotFound, "object not found"
	case strings.Contains(code, "AccessDenied"), strings.Contains(code, "Forbidden"):
		se.Code, se.Message = storage.CodeAccessDenied, "access denied"
	default:
		se.Code, se.Message = storage.CodeInternalError, "internal storage error"
	}
	return se
}
