// Package files stores uploaded document blobs in MinIO.
package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"

	"flowdocs/internal/config"
)

// Storage reads and writes document blobs in a MinIO bucket.
type Storage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
}

// NewStorage creates a Storage on top of an initialized MinIO client.
func NewStorage(client *minio.Client, cfg *config.MinIOConfig) *Storage {
	return &Storage{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		secure:   cfg.Secure,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Save uploads a blob under objectKey.
func (s *Storage) Save(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("store object %s: %w", objectKey, err)
	}
	return nil
}

// Remove deletes the blob under objectKey.
func (s *Storage) Remove(ctx context.Context, objectKey string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object %s: %w", objectKey, err)
	}
	return nil
}

// Fetch downloads the blob to a temporary file and returns its path with a
// cleanup function. The extraction pipeline works on local paths.
func (s *Storage) Fetch(ctx context.Context, objectKey string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "flowdocs-*"+filepath.Ext(objectKey))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()

	if err := s.client.FGetObject(ctx, s.bucket, objectKey, path, minio.GetObjectOptions{}); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("fetch object %s: %w", objectKey, err)
	}
	return path, func() { os.Remove(path) }, nil
}

// URL returns the public URL of the blob under objectKey.
func (s *Storage) URL(objectKey string) string {
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectKey)
}
