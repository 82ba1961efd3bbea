// Package datasource opens raw extracts by name from wherever the pipeline
// file says they live: a local directory, an HTTP mirror of the IMDB dump or
// a Cloud Storage bucket.
package datasource

import (
	"context"
	"fmt"
	"io"
	"time"

	"moviemart/internal/config"
	"moviemart/internal/datasource/file"
	"moviemart/internal/datasource/gcs"
	"moviemart/internal/datasource/httpds"
)

// Source opens one named extract (e.g. "title.basics.tsv.gz").
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// New builds the Source described by cfg. The returned cleanup func releases
// clients and is never nil.
func New(ctx context.Context, cfg config.Source) (Source, func(), error) {
	switch cfg.Kind {
	case "file":
		return file.NewDir(cfg.File.Dir), func() {}, nil
	case "http":
		c := httpds.NewClient(httpds.Config{
			Timeout:            time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries:         cfg.HTTP.MaxRetries,
			InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
		})
		return httpds.NewSource(c, cfg.HTTP.BaseURL), func() {}, nil
	case "gcs":
		s, err := gcs.New(ctx, cfg.GCS.Bucket, cfg.GCS.Prefix)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
