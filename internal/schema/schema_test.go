package schema

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var people = []Column{
	{Name: "id", Kind: String},
	{Name: "name", Kind: String, Nullable: true},
}

func sample() Table {
	return Table{
		Name:        "movies",
		Description: "one row per movie",
		Columns: []Column{
			{Name: "movie_id", Kind: String, Description: "title id"},
			{Name: "runtime_minutes", Kind: Int, Nullable: true},
			{Name: "average_rating", Kind: Float},
			{Name: "genres", Kind: String, Repeated: true},
			{Name: "directors", Kind: Record, Repeated: true, Fields: people},
		},
		Rows: []Row{
			{"tt1", int64(142), 9.3, []string{"Drama"}, []Row{{"nm1", "Frank \"F\" Darabont"}}},
			{"tt2", nil, 8.0, nil, nil},
		},
	}
}

func TestWriteJSONL_ColumnOrderAndNesting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().WriteJSONL(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`{"movie_id":"tt1","runtime_minutes":142,"average_rating":9.3,"genres":["Drama"],"directors":[{"id":"nm1","name":"Frank \"F\" Darabont"}]}`,
		lines[0])
	assert.Equal(t,
		`{"movie_id":"tt2","runtime_minutes":null,"average_rating":8,"genres":[],"directors":[]}`,
		lines[1])
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	a, err := Fingerprint(sample())
	require.NoError(t, err)
	b, err := Fingerprint(sample())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := sample()
	changed.Rows[1][2] = 8.1
	c, err := Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.Len(t, FingerprintHex(a), 16)
}

func TestValidate(t *testing.T) {
	require.NoError(t, sample().Validate())

	bad := sample()
	bad.Rows[0][0] = nil
	assert.ErrorContains(t, bad.Validate(), "movie_id")

	bad = sample()
	bad.Rows[0][1] = 142
	assert.ErrorContains(t, bad.Validate(), "runtime_minutes")

	bad = sample()
	bad.Rows[0][4] = []Row{{"nm1"}}
	assert.Error(t, bad.Validate())

	bad = sample()
	bad.Rows[1] = Row{"tt2"}
	assert.Error(t, bad.Validate())
}

func TestJSONValue(t *testing.T) {
	s, err := JSONValue(sample().Columns[4], []Row{{"nm1", nil}})
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"nm1","name":null}]`, s)
}

func TestDescribe(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Describe(&buf, sample()))
	out := buf.String()
	assert.Contains(t, out, "movies: one row per movie")
	assert.Contains(t, out, "ARRAY<RECORD>")
	assert.Contains(t, out, "    id ")
}

func TestColumn_Nested(t *testing.T) {
	assert.True(t, sample().Columns[3].Nested())
	assert.True(t, sample().Columns[4].Nested())
	assert.False(t, sample().Columns[0].Nested())
}
