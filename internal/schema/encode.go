package schema

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

// WriteJSONL writes one JSON object per row with keys in column order. The
// output depends only on the rows, so equal tables encode to equal bytes.
func (t Table) WriteJSONL(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	var buf []byte
	for i, r := range t.Rows {
		var err error
		buf, err = appendObject(buf[:0], t.Columns, r)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", t.Name, i, err)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// JSONValue encodes a single value of column c, e.g. a nested actor list for
// a SQL text column.
func JSONValue(c Column, v any) (string, error) {
	b, err := appendValue(nil, c, v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Fingerprint returns the xxh3 hash of the table's JSONL encoding.
func Fingerprint(t Table) (uint64, error) {
	h := xxh3.New()
	if err := t.WriteJSONL(h); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// FingerprintHex formats a fingerprint for logs and reports.
func FingerprintHex(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

func appendObject(b []byte, cols []Column, r Row) ([]byte, error) {
	if len(r) != len(cols) {
		return nil, fmt.Errorf("has %d values for %d columns", len(r), len(cols))
	}
	b = append(b, '{')
	for i, c := range cols {
		if i > 0 {
			b = append(b, ',')
		}
		var err error
		if b, err = appendString(b, c.Name); err != nil {
			return nil, err
		}
		b = append(b, ':')
		if b, err = appendValue(b, c, r[i]); err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
	}
	return append(b, '}'), nil
}

func appendValue(b []byte, c Column, v any) ([]byte, error) {
	switch vv := v.(type) {
	case nil:
		if c.Repeated {
			return append(b, '[', ']'), nil
		}
		return append(b, "null"...), nil
	case string:
		return appendString(b, vv)
	case int64:
		return strconv.AppendInt(b, vv, 10), nil
	case float64:
		if math.IsNaN(vv) || math.IsInf(vv, 0) {
			return nil, fmt.Errorf("non-finite float %v", vv)
		}
		return strconv.AppendFloat(b, vv, 'f', -1, 64), nil
	case bool:
		return strconv.AppendBool(b, vv), nil
	case []string:
		b = append(b, '[')
		for i, s := range vv {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = appendString(b, s); err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	case []Row:
		b = append(b, '[')
		for i, nested := range vv {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = appendObject(b, c.Fields, nested); err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

// appendString escapes s exactly as encoding/json does.
func appendString(b []byte, s string) ([]byte, error) {
	q, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(b, q...), nil
}
