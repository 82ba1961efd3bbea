package datasource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// Memory serves extracts from an in-memory map. It backs tests and
// programmatic runs that already hold the bytes.
type Memory map[string][]byte

// Open returns a reader over the named blob.
func (m Memory) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
