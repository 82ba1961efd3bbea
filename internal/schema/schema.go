// Package schema describes mart tables in a storage-neutral way: an ordered
// column list (with nested record columns) plus rows of plain Go values. Every
// sink maps these onto its own types, and the canonical JSON-lines encoding
// defined here is what fingerprints hash.
package schema

import (
	"fmt"
	"io"
	"strings"
)

// Kind is a column's scalar type. Names follow BigQuery standard types.
type Kind string

const (
	String Kind = "STRING"
	Int    Kind = "INTEGER"
	Float  Kind = "FLOAT"
	Bool   Kind = "BOOLEAN"
	Record Kind = "RECORD"
)

// Column describes one column. A Repeated column holds []string for String
// and []Row for Record. Record columns list their nested Fields.
type Column struct {
	Name        string
	Kind        Kind
	Repeated    bool
	Nullable    bool
	Description string
	Fields      []Column
}

// Row holds one value per column, in column order. Scalars are nil, string,
// int64, float64 or bool.
type Row []any

// Table is a named, fully materialized table.
type Table struct {
	Name        string
	Description string
	Columns     []Column
	Rows        []Row
}

// Nested reports whether the column is stored as JSON text by flat sinks.
func (c Column) Nested() bool {
	return c.Repeated || c.Kind == Record
}

// Validate checks that every row has one value per column and that values
// match their declared kinds.
func (t Table) Validate() error {
	for i, r := range t.Rows {
		if err := validateRow(t.Columns, r); err != nil {
			return fmt.Errorf("%s row %d: %w", t.Name, i, err)
		}
	}
	return nil
}

func validateRow(cols []Column, r Row) error {
	if len(r) != len(cols) {
		return fmt.Errorf("has %d values for %d columns", len(r), len(cols))
	}
	for i, c := range cols {
		if err := validateValue(c, r[i]); err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
	}
	return nil
}

func validateValue(c Column, v any) error {
	if v == nil {
		if c.Nullable || c.Repeated {
			return nil
		}
		return fmt.Errorf("null in required column")
	}
	if c.Repeated {
		switch vv := v.(type) {
		case []string:
			if c.Kind != String {
				return fmt.Errorf("got []string for repeated %s", c.Kind)
			}
		case []Row:
			if c.Kind != Record {
				return fmt.Errorf("got []Row for repeated %s", c.Kind)
			}
			for _, nested := range vv {
				if err := validateRow(c.Fields, nested); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unexpected %T for repeated column", v)
		}
		return nil
	}
	ok := false
	switch v.(type) {
	case string:
		ok = c.Kind == String
	case int64:
		ok = c.Kind == Int
	case float64:
		ok = c.Kind == Float
	case bool:
		ok = c.Kind == Bool
	}
	if !ok {
		return fmt.Errorf("unexpected %T for %s", v, c.Kind)
	}
	return nil
}

// Describe writes a human-readable listing of the tables' columns, nested
// fields indented under their record column.
func Describe(w io.Writer, tables ...Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", t.Name, t.Description); err != nil {
			return err
		}
		if err := describeColumns(w, t.Columns, 1); err != nil {
			return err
		}
	}
	return nil
}

func describeColumns(w io.Writer, cols []Column, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, c := range cols {
		typ := string(c.Kind)
		if c.Repeated {
			typ = "ARRAY<" + typ + ">"
		}
		if _, err := fmt.Fprintf(w, "%s%-22s %-16s %s\n", indent, c.Name, typ, c.Description); err != nil {
			return err
		}
		if len(c.Fields) > 0 {
			if err := describeColumns(w, c.Fields, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
