// Package storage keeps interview transcripts in object storage.
package storage

import (
	"context"
	"io"
	"time"
)

type Uploader interface {
	// Upload returns a gs:// style path, not a public URL.
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Signer interface {
	SignedGetURL(ctx context.Context, storedPath string, ttl time.Duration) (string, error)
}
