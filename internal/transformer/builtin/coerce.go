package builtin

import (
	"strconv"
	"strings"

	"moviemart/pkg/records"
)

// Coerce converts string fields to typed values. Supported types are "int"
// (int64), "float" (float64) and "bool" (also accepts "0"/"1"). A value that
// does not parse becomes nil: a malformed scalar degrades to absent and never
// fails the batch.
type Coerce struct {
	Types map[string]string // field -> int | float | bool
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			s, ok := r[field].(string)
			if !ok {
				continue
			}
			r[field] = coerce(strings.TrimSpace(s), typ)
		}
	}
	return in
}

func coerce(s, typ string) any {
	switch typ {
	case "int":
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	case "float":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "bool":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	default:
		return s
	}
	return nil
}
