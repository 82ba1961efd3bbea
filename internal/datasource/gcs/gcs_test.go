package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "name.basics.tsv.gz", ObjectName("", "name.basics.tsv.gz"))
	assert.Equal(t, "imdb/2024-05-01/name.basics.tsv.gz", ObjectName("imdb/2024-05-01/", "name.basics.tsv.gz"))
	assert.Equal(t, "imdb/name.basics.tsv.gz", ObjectName("imdb", "name.basics.tsv.gz"))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), "", "")
	assert.Error(t, err)
}
