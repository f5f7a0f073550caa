// Package storage is the filesystem abstraction used for product images.
//
// Two drivers are available:
//   - "local": local filesystem, served by the app under /storage
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Get returns a ReadCloser for the file. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// URL returns the public URL for path.
	URL(path string) string

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error
}

// Options selects and configures a driver.
type Options struct {
	Driver string // "local" | "s3"

	LocalRoot string
	LocalURL  string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string // leave empty for real AWS
	S3URL      string
}

// New builds the disk named by opts.Driver.
func New(ctx context.Context, opts Options) (Disk, error) {
	switch opts.Driver {
	case "", "local":
		return NewLocal(opts.LocalRoot, opts.LocalURL)
	case "s3":
		return NewS3(ctx, opts)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
