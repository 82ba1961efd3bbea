package datasource

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviemart/internal/config"
	"moviemart/internal/datasource/file"
	"moviemart/internal/datasource/httpds"
)

func TestNew_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.tsv"), []byte("a\n"), 0o644))

	src, cleanup, err := New(context.Background(), config.Source{Kind: "file", File: config.SourceFile{Dir: dir}})
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &file.Dir{}, src)

	rc, err := src.Open(context.Background(), "x.tsv")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "a\n", string(b))
}

func TestNew_HTTP(t *testing.T) {
	src, cleanup, err := New(context.Background(), config.Source{Kind: "http", HTTP: config.SourceHTTP{BaseURL: "https://datasets.imdbws.com/"}})
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &httpds.Source{}, src)
}

func TestNew_Unknown(t *testing.T) {
	_, cleanup, err := New(context.Background(), config.Source{Kind: "ftp"})
	require.Error(t, err)
	require.NotNil(t, cleanup)
}

func TestMemory(t *testing.T) {
	m := Memory{"a": []byte("x")}
	rc, err := m.Open(context.Background(), "a")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "x", string(b))

	_, err = m.Open(context.Background(), "b")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
