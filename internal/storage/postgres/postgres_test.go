package postgres

import (
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviemart/internal/schema"
)

func TestCopyRows_JSONBColumns(t *testing.T) {
	tbl := schema.Table{
		Name: "movies",
		Columns: []schema.Column{
			{Name: "movie_id", Kind: schema.String},
			{Name: "genres", Kind: schema.String, Repeated: true},
		},
		Rows: []schema.Row{{"tt1", []string{"Drama"}}, {"tt2", nil}},
	}
	rows, err := copyRows(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, json.RawMessage(`["Drama"]`), rows[0][1])
	assert.Equal(t, json.RawMessage(`[]`), rows[1][1])
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, pgx.Identifier{"movies"}, identifier("", "movies"))
	assert.Equal(t, pgx.Identifier{"silver", "movies"}, identifier("silver", "movies"))
	assert.Equal(t, `"silver"."dim_actors"`, Dialect.QualifiedName("silver", "dim_actors"))
	assert.Equal(t, `"we""ird"`, pgIdent(`we"ird`))
}
