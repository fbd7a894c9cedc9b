package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore implements BlobStore on top of MinIO.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// MinIOOptions configures MinIO client initialization.
type MinIOOptions struct {
	// Bucket is the bucket all blobs are stored in.
	Bucket string
	// Endpoint is the MinIO server address.
	Endpoint string
	// AccessKey is the access key ID.
	AccessKey string
	// SecretKey is the secret access key.
	SecretKey string
	// Region is the MinIO region.
	Region string
	// UseSSL toggles TLS for MinIO connections.
	UseSSL bool
}

// NewMinIO constructs a MinIO-backed blob store.
func NewMinIO(opts MinIOOptions) (*MinIOStore, error) {
	if opts.Bucket == "" {
		return nil, ErrBucketRequired
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}

	return &MinIOStore{client: client, bucket: opts.Bucket}, nil
}

// Put uploads a blob to MinIO.
func (m *MinIOStore) Put(ctx context.Context, key string, data []byte, opts PutOptions) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  opts.ContentType,
			UserMetadata: opts.Metadata,
		})
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Key:         key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: opts.ContentType,
	}, nil
}

// Get downloads a blob from MinIO.
func (m *MinIOStore) Get(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	return data, ObjectInfo{
		Key:         key,
		Size:        stat.Size,
		ETag:        stat.ETag,
		ContentType: stat.ContentType,
		UpdatedAt:   stat.LastModified,
	}, nil
}

// Close releases MinIO store resources.
func (m *MinIOStore) Close() error {
	return nil
}
