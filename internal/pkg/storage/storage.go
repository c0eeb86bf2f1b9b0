package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventmarket/config"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage is the bucket the banner pipeline reads from and writes to.
// Objects written through it are publicly readable.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Bucket() string
}

// Open returns the driver named by cfg.Driver. The local driver signs uploads
// against cfg.PublicURL, which must then point at the API.
func Open(ctx context.Context, cfg *config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Driver {
	case "", "s3":
		return NewS3Storage(ctx, cfg)
	case "local":
		return NewFileStorage(cfg.LocalPath, cfg.Bucket, cfg.PublicURL, cfg.SigningSecret), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
