// Package builtin contains the reusable transformers used to prepare raw IMDB
// rows for staging.
package builtin

import "moviemart/pkg/records"

// Nullify replaces the null sentinel (and empty cells) with nil so that no
// later step ever sees the sentinel as a literal string.
type Nullify struct {
	// Sentinel is the raw null token, `\N` in the IMDB dump.
	Sentinel string
}

// Apply rewrites sentinel and empty string values to nil in place.
func (n Nullify) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if s == "" || (n.Sentinel != "" && s == n.Sentinel) {
				r[k] = nil
			}
		}
	}
	return in
}
