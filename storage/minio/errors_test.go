package minio

import (
	"errors"
	"testing"

	"github.com/manavc-13/KIIT-Mailer/storage"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code storage.ErrorCode
	}{
		{"missing key response", minio.ErrorResponse{Code: "NoSuchKey"}, storage.CodeNotFound},
		{"missing bucket response", minio.ErrorResponse{Code: "NoSuchBucket"}, storage.CodeBucketNotFound},
		{"access denied response", minio.ErrorResponse{Code: "AccessDenied"}, storage.CodeAccessDenied},
		{"plain not found text", errors.New("404 NotFound"), storage.CodeNotFound},
		{"anything else", errors.New("connection reset"), storage.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toStorageError(tt.err, "attachments", "logo.jpeg")
			var se *storage.StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, "attachments", se.Bucket)
			assert.Equal(t, "logo.jpeg", se.Key)
			assert.Equal(t, tt.err, errors.Unwrap(err))
		})
	}

	assert.NoError(t, toStorageError(nil, "b", "k"))
}
