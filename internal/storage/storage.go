package storage

import "context"

// ObjectStore is the QR asset store: a flat namespace of immutable objects
// addressed by path under a stable public base URL.
type ObjectStore interface {
	Exists(ctx context.Context, path string) (bool, error)
	Write(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}
