// Package jsonl writes each mart table to <dir>/<table>.jsonl using the
// canonical encoding, so published files hash to the run's fingerprints.
package jsonl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// Sink writes into a directory.
type Sink struct {
	dir string
}

// Open creates dir if needed.
func Open(dir string) (*Sink, error) {
	if dir == "" {
		return nil, fmt.Errorf("jsonl: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonl: %w", err)
	}
	return &Sink{dir: dir}, nil
}

func init() {
	storage.Register("jsonl", func(_ context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(cfg.Dir)
	})
}

// Path is where table is written.
func (s *Sink) Path(table string) string {
	return filepath.Join(s.dir, table+".jsonl")
}

// Replace writes to a temp file in the same directory and renames it over the
// previous file.
func (s *Sink) Replace(ctx context.Context, t schema.Table) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	err := storage.WriteFileAtomic(s.Path(t.Name), func(f *os.File) error {
		return t.WriteJSONL(f)
	})
	if err != nil {
		return 0, fmt.Errorf("jsonl: %w", err)
	}
	return int64(len(t.Rows)), nil
}

// Close is a no-op.
func (s *Sink) Close() error { return nil }
