// Package attachment keeps the files sent with every mail of a batch.
package attachment

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/manavc-13/KIIT-Mailer/storage"
	"github.com/pkg/errors"
)

// Attachment is an in-memory file. Content is read once and reused for every
// recipient of a batch.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// New builds an attachment from raw bytes. An empty contentType is detected.
func New(filename, contentType string, content []byte) Attachment {
	if contentType == "" {
		contentType = DetectContentType(filename, content)
	}
	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		Content:     content,
	}
}

// DetectContentType resolves a MIME type from the file extension, falling back
// to content sniffing.
func DetectContentType(filename string, content []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return http.DetectContentType(content)
}

// FromFile reads a local file.
func FromFile(p string) (Attachment, error) {
	content, err := os.ReadFile(p)
	if err != nil {
		return Attachment{}, errors.Wrapf(err, "failed to read attachment %s", p)
	}
	return New(filepath.Base(p), "", content), nil
}

// FromStorage downloads an object from the attachment library.
func FromStorage(ctx context.Context, g storage.Getter, ref storage.Ref) (Attachment, error) {
	rc, info, err := g.Get(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return Attachment{}, errors.Wrapf(err, "failed to get attachment %s", ref)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return Attachment{}, errors.Wrapf(err, "failed to read attachment %s", ref)
	}

	contentType := ""
	if info != nil {
		contentType = info.ContentType
	}
	if contentType == "application/octet-stream" {
		contentType = ""
	}
	return New(path.Base(ref.Key), contentType, content), nil
}

// Load resolves a local path or an s3:// reference. g may be nil when only
// local paths are used.
func Load(ctx context.Context, g storage.Getter, src string) (Attachment, error) {
	if !storage.IsRef(src) {
		return FromFile(src)
	}
	if g == nil {
		return Attachment{}, errors.Errorf("attachment %s needs an object store, none configured", src)
	}
	ref, err := storage.ParseRef(src)
	if err != nil {
		return Attachment{}, err
	}
	return FromStorage(ctx, g, ref)
}
