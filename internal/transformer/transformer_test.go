package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"moviemart/pkg/records"
)

type tagger string

func (t tagger) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		r["trail"] = r.String("trail") + string(t)
	}
	return in
}

type dropAll struct{}

func (dropAll) Apply(in []records.Record) []records.Record { return in[:0] }

func TestChain_AppliesInOrder(t *testing.T) {
	out := Chain{tagger("a"), tagger("b"), tagger("c")}.Apply([]records.Record{{}})
	assert.Equal(t, "abc", out[0].String("trail"))
}

func TestChain_ShortCircuitsOnEmpty(t *testing.T) {
	out := Chain{dropAll{}, tagger("x")}.Apply([]records.Record{{}, {}})
	assert.Empty(t, out)
}

func TestChain_EmptyIsIdentity(t *testing.T) {
	in := []records.Record{{"a": "1"}}
	assert.Equal(t, in, Chain(nil).Apply(in))
}
