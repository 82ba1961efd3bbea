// Package gcs reads extracts from a Cloud Storage bucket, where the ingestion
// job parks the daily IMDB dump.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
)

// Source opens objects under bucket/prefix.
type Source struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// New creates a client with application default credentials.
func New(ctx context.Context, bucket, prefix string) (*Source, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}
	return &Source{client: c, bucket: c.Bucket(bucket), prefix: prefix}, nil
}

// Open streams the object prefix/name.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj := ObjectName(s.prefix, name)
	r, err := s.bucket.Object(obj).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: open %s: %w", obj, err)
	}
	return r, nil
}

// Close releases the client.
func (s *Source) Close() error { return s.client.Close() }

// ObjectName joins prefix and name with exactly one slash.
func ObjectName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
