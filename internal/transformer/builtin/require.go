package builtin

import "moviemart/pkg/records"

// Require removes any record missing a value for one of Fields. It keeps
// rows that cannot be keyed (e.g. a title row without tconst) out of staging.
type Require struct {
	Fields []string
}

// Apply filters in place and returns the surviving prefix.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil || v == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}
