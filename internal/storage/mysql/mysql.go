// Package mysql writes mart tables to MySQL. MySQL commits implicitly around
// DDL, so rows are loaded into a shadow table first and swapped in with a
// single RENAME TABLE, which MySQL performs atomically.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// insertBatch rows go into one multi-row INSERT.
const insertBatch = 500

// Dialect maps mart columns to MySQL types. Nested columns use the native
// JSON type.
var Dialect = storage.Dialect{
	Quote: myIdent,
	Types: map[schema.Kind]string{
		schema.String: "TEXT",
		schema.Int:    "BIGINT",
		schema.Float:  "DOUBLE",
		schema.Bool:   "BOOLEAN",
	},
	JSON: "JSON",
	Key:  "VARCHAR(64)",
}

// Sink is a MySQL-backed storage.Sink.
type Sink struct {
	db *sql.DB
}

// Open parses dsn (go-sql-driver format, e.g. "user:pass@tcp(host:3306)/marts")
// and connects.
func Open(ctx context.Context, dsn string) (*Sink, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("mysql: dsn must name a database")
	}
	cfg.ParseTime = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Sink{db: db}, nil
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Replace loads t into a shadow table and renames it over the live one.
func (s *Sink) Replace(ctx context.Context, t schema.Table) (int64, error) {
	shadow := storage.ShadowName(t.Name)
	retired := storage.RetiredName(t.Name)

	for _, stmt := range []string{
		"DROP TABLE IF EXISTS " + myIdent(shadow),
		"DROP TABLE IF EXISTS " + myIdent(retired),
		Dialect.CreateTable(myIdent(shadow), t.Columns),
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("mysql: prepare shadow for %s: %w", t.Name, err)
		}
	}

	n, err := s.load(ctx, shadow, t)
	if err != nil {
		_, _ = s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+myIdent(shadow))
		return 0, err
	}

	exists, err := s.tableExists(ctx, t.Name)
	if err != nil {
		return 0, err
	}
	if exists {
		swap := fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s",
			myIdent(t.Name), myIdent(retired), myIdent(shadow), myIdent(t.Name))
		if _, err := s.db.ExecContext(ctx, swap); err != nil {
			return 0, fmt.Errorf("mysql: swap %s: %w", t.Name, err)
		}
		if _, err := s.db.ExecContext(ctx, "DROP TABLE "+myIdent(retired)); err != nil {
			return 0, fmt.Errorf("mysql: drop retired %s: %w", t.Name, err)
		}
		return n, nil
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("RENAME TABLE %s TO %s", myIdent(shadow), myIdent(t.Name))); err != nil {
		return 0, fmt.Errorf("mysql: rename %s: %w", t.Name, err)
	}
	return n, nil
}

func (s *Sink) load(ctx context.Context, table string, t schema.Table) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin: %w", err)
	}
	var n int64
	for start := 0; start < len(t.Rows); start += insertBatch {
		end := min(start+insertBatch, len(t.Rows))
		query, args, err := insertStatement(table, t.Columns, t.Rows[start:end])
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: %s rows %d-%d: %w", t.Name, start, end, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert %s rows %d-%d: %w", t.Name, start, end, err)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return n, nil
}

func (s *Sink) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
		name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("mysql: lookup %s: %w", name, err)
	}
	return count > 0, nil
}

// Close closes the pool.
func (s *Sink) Close() error { return s.db.Close() }

// insertStatement builds one multi-row INSERT with positional placeholders.
func insertStatement(table string, cols []schema.Column, rows []schema.Row) (string, []any, error) {
	names := storage.ColumnNames(cols)
	quoted := make([]string, len(names))
	for i, c := range names {
		quoted[i] = myIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", myIdent(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(cols))
	for i, r := range rows {
		flat, err := storage.FlatRow(cols, r)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
		args = append(args, flat...)
	}
	return b.String(), args, nil
}

// myIdent backquotes an identifier, doubling embedded backquotes.
func myIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
