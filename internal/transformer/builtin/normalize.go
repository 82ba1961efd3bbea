package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"moviemart/pkg/records"
)

// Normalize trims whitespace (including non-breaking spaces) and brings every
// string to Unicode NFC, so names that differ only in composition sort and
// compare equal. Values that become empty are set to nil.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			if !norm.NFC.IsNormalString(s) {
				s = norm.NFC.String(s)
			}
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = s
		}
	}
	return in
}
