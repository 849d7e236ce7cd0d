package media

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by ObjectStorage when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage abstracts blob storage (S3/R2/MinIO/memory).
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (Object, error)
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// Object is an open blob. Callers must close Body.
type Object struct {
	Body     io.ReadCloser
	Size     int64
	MimeType string
}

// Config controls answer image uploads.
type Config struct {
	MaxBytes int64
	// PublicBaseURL prefixes the returned imageUrl.
	PublicBaseURL string
}

// UploadRequest is a single image upload.
type UploadRequest struct {
	Filename string
	MimeType string
	Content  []byte
}

// UploadResponse is returned to the HTTP transport.
type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}
