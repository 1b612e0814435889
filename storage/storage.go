// Package storage describes the object store that backs the attachment library.
package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// RefScheme prefixes object references accepted wherever a file path is.
const RefScheme = "s3://"

// ObjectInfo represents metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
	ContentType  string
}

// Getter reads objects.
type Getter interface {
	// Get retrieves an object. The caller closes the reader.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, *ObjectInfo, error)
}

// Storage is the read side of an object store plus its lifecycle.
type Storage interface {
	Getter
	io.Closer
}

// Ref addresses one object.
type Ref struct {
	Bucket string
	Key    string
}

func (r Ref) String() string {
	return RefScheme + r.Bucket + "/" + r.Key
}

// IsRef reports whether s looks like an object reference rather than a local path.
func IsRef(s string) bool {
	return strings.HasPrefix(s, RefScheme)
}

// ParseRef parses "s3://bucket/key". An empty bucket ("s3:///key") selects
// the store's default bucket.
func ParseRef(s string) (Ref, error) {
	if !IsRef(s) {
		return Ref{}, errors.Errorf("not an object reference: %q", s)
	}
	rest := strings.TrimPrefix(s, RefScheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return Ref{}, errors.Errorf("object reference %q has no key", s)
	}
	return Ref{Bucket: bucket, Key: key}, nil
}
