package builtin

import (
	"fmt"
	"strings"

	"moviemart/pkg/records"
)

// DeDup drops records whose key was already seen. The first occurrence wins,
// so a source that lists the same title twice keeps the row it listed first.
//
// The seen set lives on the value, so one DeDup (used through a pointer)
// de-duplicates across all batches of a stream.
type DeDup struct {
	Keys []string
	seen map[string]struct{}
}

// NewDeDup returns a DeDup keyed by the given fields.
func NewDeDup(keys ...string) *DeDup {
	return &DeDup{Keys: keys, seen: make(map[string]struct{})}
}

func (d *DeDup) Apply(in []records.Record) []records.Record {
	if len(d.Keys) == 0 {
		return in
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	out := in[:0]
	for _, r := range in {
		key := d.keyOf(r)
		if _, dup := d.seen[key]; dup {
			continue
		}
		d.seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (d *DeDup) keyOf(r records.Record) string {
	var b strings.Builder
	for i, k := range d.Keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch t := r[k].(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return b.String()
}
