package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

func table(rows ...schema.Row) schema.Table {
	return schema.Table{
		Name: "movies",
		Columns: []schema.Column{
			{Name: "movie_id", Kind: schema.String},
			{Name: "runtime_minutes", Kind: schema.Int, Nullable: true},
			{Name: "average_rating", Kind: schema.Float},
			{Name: "genres", Kind: schema.String, Repeated: true},
		},
		Rows: rows,
	}
}

/*
TestSink_ReplaceSwapsWholeTable verifies that a second Replace fully replaces
the first table's rows and that nested values land as JSON text.
*/
func TestSink_ReplaceSwapsWholeTable(t *testing.T) {
	ctx := context.Background()
	s, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: filepath.Join(t.TempDir(), "marts.db")})
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Replace(ctx, table(
		schema.Row{"tt1", int64(142), 9.3, []string{"Drama"}},
		schema.Row{"tt2", nil, 8.0, nil},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Replace(ctx, table(schema.Row{"tt3", int64(90), 7.1, []string{"Comedy", "Drama"}}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	db := s.(*Sink).db
	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&count))
	assert.Equal(t, 1, count)

	var genres string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT genres FROM movies WHERE movie_id = 'tt3'`).Scan(&genres))
	assert.Equal(t, `["Comedy","Drama"]`, genres)
}

func TestSink_ReplaceFailureKeepsPreviousTable(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "marts.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Replace(ctx, table(schema.Row{"tt1", int64(1), 1.0, nil}))
	require.NoError(t, err)

	_, err = s.Replace(ctx, table(
		schema.Row{"tt2", int64(2), 2.0, nil},
		schema.Row{"tt2", int64(2), 2.0, nil},
	))
	require.Error(t, err, "duplicate primary key must abort the swap")

	var id string
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT movie_id FROM movies`).Scan(&id))
	assert.Equal(t, "tt1", id)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.Error(t, err)
}
