// Package postgres writes mart tables to Postgres with pgx v5. Rows are
// streamed with COPY into a table created in the same transaction that drops
// the previous one; Postgres DDL is transactional, so readers switch from the
// old table to the new one at commit.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// Dialect maps mart columns to Postgres types. Nested columns are JSONB.
var Dialect = storage.Dialect{
	Quote: pgIdent,
	Types: map[schema.Kind]string{
		schema.String: "TEXT",
		schema.Int:    "BIGINT",
		schema.Float:  "DOUBLE PRECISION",
		schema.Bool:   "BOOLEAN",
	},
	JSON: "JSONB",
}

// Sink is a Postgres-backed storage.Sink.
type Sink struct {
	pool   *pgxpool.Pool
	schema string
}

// Open connects a pool. schemaName optionally qualifies table names.
func Open(ctx context.Context, dsn, schemaName string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Sink{pool: pool, schema: schemaName}, nil
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg.DSN, cfg.Schema)
	})
}

// Replace recreates t.Name and COPYs all rows in one transaction.
func (s *Sink) Replace(ctx context.Context, t schema.Table) (int64, error) {
	rows, err := copyRows(t)
	if err != nil {
		return 0, fmt.Errorf("postgres: %w", err)
	}
	fq := Dialect.QualifiedName(s.schema, t.Name)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+fq); err != nil {
		return 0, fmt.Errorf("postgres: drop %s: %w", t.Name, err)
	}
	if _, err := tx.Exec(ctx, Dialect.CreateTable(fq, t.Columns)); err != nil {
		return 0, fmt.Errorf("postgres: create %s: %w", t.Name, err)
	}
	n, err := tx.CopyFrom(ctx, identifier(s.schema, t.Name), storage.ColumnNames(t.Columns), pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("postgres: copy %s: %s (%s)", t.Name, pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("postgres: copy %s: %w", t.Name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// Close closes the pool.
func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

// copyRows flattens rows for COPY. JSON text is passed as json.RawMessage so
// pgx sends it to JSONB unchanged.
func copyRows(t schema.Table) ([][]any, error) {
	out := make([][]any, 0, len(t.Rows))
	for i, r := range t.Rows {
		flat, err := storage.FlatRow(t.Columns, r)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", t.Name, i, err)
		}
		for j, c := range t.Columns {
			if c.Nested() {
				flat[j] = json.RawMessage(flat[j].(string))
			}
		}
		out = append(out, flat)
	}
	return out, nil
}

func identifier(schemaName, table string) pgx.Identifier {
	if schemaName == "" {
		return pgx.Identifier{table}
	}
	return pgx.Identifier{schemaName, table}
}

// pgIdent quotes an identifier, doubling embedded quotes.
func pgIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
