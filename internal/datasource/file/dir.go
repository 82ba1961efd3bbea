// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir opens extracts from one local directory. Safe for concurrent use.
type Dir struct{ root string }

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir { return &Dir{root: root} }

// Open opens root/name for reading. A context that is already done returns
// its error without touching the filesystem. Filesystem errors wrap the path
// and keep errors.Is(err, os.ErrNotExist) working.
func (d *Dir) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	path := filepath.Join(d.root, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	adviseSequential(f)
	return f, nil
}
