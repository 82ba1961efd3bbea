// Package transformer applies ordered, batch-at-a-time rewrites to parsed
// records before staging decodes them.
package transformer

import "moviemart/pkg/records"

// Transformer rewrites a batch of records. Implementations may modify records
// in place and may return a shorter slice.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
