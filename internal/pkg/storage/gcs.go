package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore implements BlobStore on top of Google Cloud Storage.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// Bucket is the bucket all blobs are stored in.
	Bucket string
	// Client provides an existing GCS client.
	Client *gcs.Client
	// ClientOptions are used when creating a new client.
	ClientOptions []option.ClientOption
}

// NewGCS constructs a GCS-backed blob store.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	if opts.Bucket == "" {
		return nil, ErrBucketRequired
	}

	client := opts.Client
	if client == nil {
		created, err := gcs.NewClient(ctx, opts.ClientOptions...)
		if err != nil {
			return nil, err
		}
		client = created
	}

	return &GCSStore{client: client, bucket: opts.Bucket}, nil
}

// Put uploads a blob to GCS.
func (g *GCSStore) Put(ctx context.Context, key string, data []byte, opts PutOptions) (ObjectInfo, error) {
	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if opts.ContentType != "" {
		writer.ContentType = opts.ContentType
	}
	if len(opts.Metadata) > 0 {
		writer.Metadata = opts.Metadata
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return ObjectInfo{}, err
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
	}
	if attrs := writer.Attrs(); attrs != nil {
		info.ETag = attrs.Etag
		info.UpdatedAt = attrs.Updated
	}

	return info, nil
}

// Get downloads a blob from GCS.
func (g *GCSStore) Get(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	reader, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	return data, ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: reader.Attrs.ContentType,
		UpdatedAt:   reader.Attrs.LastModified,
	}, nil
}

// Close closes the GCS client.
func (g *GCSStore) Close() error {
	return g.client.Close()
}
