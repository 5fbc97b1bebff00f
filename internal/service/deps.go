package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return systemClock{} }

// IDGenerator mints identifiers for new records. IDs are engine-generated
// strings so the two storage backends stay interchangeable.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string { return uuid.NewString() }

// BlobStorage is the image store used by products, categories and jobs.
// Deletions are collected while a transaction runs and released only after
// it commits, so an aborted transaction never orphans a record's images.
type BlobStorage interface {
	Upload(ctx context.Context, originalFileName string, data []byte) (string, error)
	Get(ctx context.Context, objectKey string) ([]byte, error)
	Delete(ctx context.Context, objectKey string) error
}
