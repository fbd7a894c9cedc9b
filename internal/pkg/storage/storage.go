// Package storage provides a small blob-store abstraction used for vault
// backup snapshots. Each adapter is bound to a single bucket at
// construction time.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBucketRequired indicates the adapter was built without a bucket name.
var ErrBucketRequired = errors.New("pkgstorage: bucket is required")

// BlobStore stores and retrieves opaque blobs by key.
type BlobStore interface {
	io.Closer

	// Put uploads data under key and returns the stored object metadata.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) (ObjectInfo, error)
	// Get downloads the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, ObjectInfo, error)
}

// PutOptions configures an upload.
type PutOptions struct {
	// ContentType is the MIME type recorded with the object.
	ContentType string
	// Metadata is user-defined key/value metadata.
	Metadata map[string]string
}

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	// Key is the object key within the configured bucket.
	Key string
	// Size is the blob size in bytes.
	Size int64
	// ETag is the object ETag when the backend provides one.
	ETag string
	// ContentType is the recorded MIME type.
	ContentType string
	// UpdatedAt is the last modified time.
	UpdatedAt time.Time
}
