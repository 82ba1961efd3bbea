package storage

import (
	"fmt"
	"strings"

	"moviemart/internal/schema"
)

// Dialect captures the SQL differences between relational sinks.
type Dialect struct {
	// Quote quotes one identifier.
	Quote func(string) string
	// Types maps scalar kinds to column types.
	Types map[schema.Kind]string
	// JSON is the column type used for nested and repeated columns.
	JSON string
	// Key overrides the type of the first (primary key) column when set,
	// for engines that cannot index unbounded text.
	Key string
}

// QualifiedName joins an optional schema and a table name.
func (d Dialect) QualifiedName(schemaName, table string) string {
	if schemaName == "" {
		return d.Quote(table)
	}
	return d.Quote(schemaName) + "." + d.Quote(table)
}

// CreateTable returns a CREATE TABLE statement for cols. The first column is
// the primary key.
func (d Dialect) CreateTable(name string, cols []schema.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", name)
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		typ := d.JSON
		switch {
		case i == 0 && d.Key != "":
			typ = d.Key
		case !c.Nested():
			typ = d.Types[c.Kind]
		}
		fmt.Fprintf(&b, "%s %s", d.Quote(c.Name), typ)
		if i == 0 {
			b.WriteString(" NOT NULL PRIMARY KEY")
		} else if !c.Nullable && !c.Nested() {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(")")
	return b.String()
}

// ColumnNames returns the column names in order.
func ColumnNames(cols []schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// FlatRow converts a row for a flat SQL table: nested and repeated values are
// encoded as JSON text, scalars pass through.
func FlatRow(cols []schema.Column, r schema.Row) ([]any, error) {
	if len(r) != len(cols) {
		return nil, fmt.Errorf("row has %d values for %d columns", len(r), len(cols))
	}
	out := make([]any, len(r))
	for i, c := range cols {
		if !c.Nested() {
			out[i] = r[i]
			continue
		}
		s, err := schema.JSONValue(c, r[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		out[i] = s
	}
	return out, nil
}

// ShadowName is the staging table a table is loaded into before the swap.
func ShadowName(table string) string { return table + "__loading" }

// RetiredName is where the previous table is parked during a rename swap.
func RetiredName(table string) string { return table + "__retired" }
