// Package storage contains the object store abstraction proofs are written to.
// Implementations stream from the reader they are given and never touch local disk.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/PYTHTRADER/findtrader/internal/config"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
// Private requests an owner-only ACL on the stored object.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
	Private     bool
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New builds the driver named by cfg.Storage.Driver.
func New(ctx context.Context, cfg *config.AppConfig) (Storage, error) {
	switch cfg.Storage.Driver {
	case "", "minio":
		return NewMinIO(cfg.MinIO)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
