// Package records defines the loosely-typed row shape that flows between the
// parser and the transformer chain, before staging decodes rows into typed
// entities.
package records

// Record is one parsed row keyed by canonical column name. Values are nil
// (absent), string, int64, float64, bool or []string.
type Record map[string]any

// String returns the string value for key, or "" when absent or not a string.
func (r Record) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the int64 value for key and whether it was present.
func (r Record) Int(key string) (int64, bool) {
	v, ok := r[key].(int64)
	return v, ok
}

// Float returns the float64 value for key and whether it was present.
// Integer values are widened.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Bool returns the bool value for key and whether it was present.
func (r Record) Bool(key string) (bool, bool) {
	v, ok := r[key].(bool)
	return v, ok
}

// Strings returns the []string value for key, or nil.
func (r Record) Strings(key string) []string {
	if v, ok := r[key].([]string); ok {
		return v
	}
	return nil
}
