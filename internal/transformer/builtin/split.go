package builtin

import (
	"strings"

	"moviemart/pkg/records"
)

// Split turns multi-valued string fields into []string. Empty elements and
// elements equal to Sentinel are skipped; a field with no surviving elements
// becomes nil rather than an empty slice.
type Split struct {
	Fields    []string
	Separator string
	Sentinel  string
}

func (s Split) Apply(in []records.Record) []records.Record {
	sep := s.Separator
	if sep == "" {
		sep = ","
	}
	for _, r := range in {
		for _, f := range s.Fields {
			raw, ok := r[f].(string)
			if !ok {
				continue
			}
			r[f] = s.split(raw, sep)
		}
	}
	return in
}

func (s Split) split(raw, sep string) any {
	parts := strings.Split(raw, sep)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || (s.Sentinel != "" && p == s.Sentinel) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
