// Package storage defines the object store abstraction the bucket backed
// origins publish through. Backends are the local filesystem and
// S3-compatible services (AWS S3, Google Cloud Storage interop, MinIO).
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// PutObject uploads data under key. Keys are slash separated paths
	// relative to the bucket or base directory, e.g. "cache/images/a/b/x.jpg".
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// GetObject retrieves an object. The caller closes the ReadCloser.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject removes an object. Deleting a missing key is not an error.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks if an object exists.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// GenerateURL returns the URL the object is served from: the public
	// base URL joined with key when one is configured, otherwise a
	// presigned URL (S3) or a file path (local).
	GenerateURL(ctx context.Context, key string) (string, error)

	// Type returns the storage type identifier ("local" or "s3").
	Type() string
}
