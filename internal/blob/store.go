package blob

import (
	"context"
	"io"
	"time"
)

// Upload carries one inbound file. A nil *Upload means no file was supplied.
type Upload struct {
	Reader      io.Reader
	Size        int64
	Name        string
	ContentType string
}

// ObjectStore is the narrow contract with the S3-compatible backend.
// Remove on a non-existent key must not be reported as a failure.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, key string) error

	// Ping verifies the backend is reachable; used by health checking.
	Ping(ctx context.Context) error
}
