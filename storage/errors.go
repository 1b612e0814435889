package storage

import (
	"errors"
	"fmt"
)

// Common storage errors.
var (
	ErrNotFound       = errors.New("object not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrBucketNotFound = errors.New("bucket not found")
)

// ErrorCode represents a storage error code.
type ErrorCode string

const (
	CodeNotFound       ErrorCode = "NotFound"
	CodeAccessDenied   ErrorCode = "AccessDenied"
	CodeBucketNotFound ErrorCode = "BucketNotFound"
	CodeInternalError  ErrorCode = "InternalError"
)

// StorageError wraps storage operation errors.
type StorageError struct {
	Code    ErrorCode
	Message string
	Err     error
	Bucket  string
	Key     string
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage.%s: %s (bucket=%s, key=%s): %v", e.Code, e.Message, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("storage.%s: %s (bucket=%s, key=%s)", e.Code, e.Message, e.Bucket, e.Key)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a StorageError against the sentinel of its code.
func (e *StorageError) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == ErrNotFound
	case CodeAccessDenied:
		return target == ErrAccessDenied
	case CodeBucketNotFound:
		return target == ErrBucketNotFound
	}
	return false
}

// IsNotFound checks if error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
