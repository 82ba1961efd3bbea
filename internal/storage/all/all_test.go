package all

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"moviemart/internal/storage"
)

func TestKinds(t *testing.T) {
	assert.Equal(t,
		[]string{"bigquery", "jsonl", "mssql", "mysql", "postgres", "sqlite", "xlsx"},
		storage.Kinds())
}
