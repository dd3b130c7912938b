// Package storage defines where rendered chart artifacts are written.
package storage

import (
	"context"
	"io"
)

// BlobStore persists named artifacts and returns a URI for each.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}
