// Package storage provides a unified file-storage API for product images and
// other uploaded assets.
//
// Drivers: "local" (default) and "s3" (AWS S3 or any S3-compatible store).
//
//	storage.Put(ctx, "products/42/front.jpg", file, "image/jpeg")
//	url := storage.URL("products/42/front.jpg")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Disk is the contract every storage driver implements.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	// Get opens path for reading. The caller closes the reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// URL returns the public URL of path.
	URL(path string) string
}
