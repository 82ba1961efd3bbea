// Package sqlite writes mart tables to a SQLite file using database/sql and
// the pure-Go modernc driver. SQLite DDL is transactional, so a replace is a
// single transaction that drops, recreates and fills the table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// Dialect maps mart columns to SQLite types. Nested columns hold JSON text,
// readable with SQLite's json_each.
var Dialect = storage.Dialect{
	Quote: func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	Types: map[schema.Kind]string{
		schema.String: "TEXT",
		schema.Int:    "INTEGER",
		schema.Float:  "REAL",
		schema.Bool:   "INTEGER",
	},
	JSON: "TEXT",
}

// Sink is a SQLite-backed storage.Sink.
type Sink struct {
	db *sql.DB
}

// Open opens the database at dsn, e.g. "marts.db" or
// "file:marts.db?_pragma=journal_mode(WAL)".
func Open(ctx context.Context, dsn string) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Sink{db: db}, nil
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Replace drops and recreates t.Name and inserts every row in one
// transaction.
func (s *Sink) Replace(ctx context.Context, t schema.Table) (int64, error) {
	name := Dialect.Quote(t.Name)
	cols := storage.ColumnNames(t.Columns)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = Dialect.Quote(c)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: drop %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, Dialect.CreateTable(name, t.Columns)); err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: create %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, r := range t.Rows {
		args, err := storage.FlatRow(t.Columns, r)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("sqlite: %s row %d: %w", t.Name, i, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			rollback()
			return 0, fmt.Errorf("sqlite: insert %s row %d: %w", t.Name, i, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close closes the database handle.
func (s *Sink) Close() error { return s.db.Close() }
