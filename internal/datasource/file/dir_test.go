package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestDir_Open verifies that Open reads files relative to the root and wraps
missing-file errors so that errors.Is(os.ErrNotExist) still holds.
*/
func TestDir_Open(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "title.ratings.tsv"), []byte("tconst\n"), 0o644))
	d := NewDir(root)

	rc, err := d.Open(context.Background(), "title.ratings.tsv")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "tconst\n", string(b))

	_, err = d.Open(context.Background(), "missing.tsv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.tsv")
}

func TestDir_OpenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDir(t.TempDir()).Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
