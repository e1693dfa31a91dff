package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
)

// GCS stores transcripts privately; readers get short-lived signed links.
type GCS struct {
	client *gcs.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCS{client: c, bucket: bucket}, nil
}

func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, objectName), nil
}

func (g *GCS) SignedGetURL(_ context.Context, storedPath string, ttl time.Duration) (string, error) {
	bucket, object, err := ParsePath(storedPath)
	if err != nil {
		return "", err
	}
	if bucket != g.bucket {
		return "", fmt.Errorf("storage: object %q is not in bucket %q", storedPath, g.bucket)
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return g.client.Bucket(bucket).SignedURL(object, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  gcs.SigningSchemeV4,
	})
}

// ParsePath splits gs://bucket/object.
func ParsePath(p string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(p, "gs://")
	if !ok {
		return "", "", fmt.Errorf("storage: %q is not a gs:// path", p)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("storage: %q has no object name", p)
	}
	return bucket, object, nil
}
