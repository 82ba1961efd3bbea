// Package mssql writes mart tables to SQL Server using go-mssqldb bulk copy.
// The table is dropped, recreated and bulk-loaded inside one transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// Dialect maps mart columns to SQL Server types. Nested columns are
// NVARCHAR(MAX) JSON text, queryable with OPENJSON.
var Dialect = storage.Dialect{
	Quote: msIdent,
	Types: map[schema.Kind]string{
		schema.String: "NVARCHAR(MAX)",
		schema.Int:    "BIGINT",
		schema.Float:  "FLOAT",
		schema.Bool:   "BIT",
	},
	JSON: "NVARCHAR(MAX)",
	Key:  "NVARCHAR(64)",
}

// Sink is a SQL Server-backed storage.Sink.
type Sink struct {
	db     *sql.DB
	schema string
}

// Open connects with a sqlserver:// DSN.
func Open(ctx context.Context, dsn, schemaName string) (*Sink, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	if schemaName == "" {
		schemaName = "dbo"
	}
	return &Sink{db: db, schema: schemaName}, nil
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg.DSN, cfg.Schema)
	})
}

// Replace recreates t.Name and bulk-copies every row in one transaction.
func (s *Sink) Replace(ctx context.Context, t schema.Table) (int64, error) {
	fq := Dialect.QualifiedName(s.schema, t.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	drop := fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", strings.ReplaceAll(fq, "'", "''"), fq)
	if _, err := tx.ExecContext(ctx, drop); err != nil {
		rollback()
		return 0, fmt.Errorf("drop %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, Dialect.CreateTable(fq, t.Columns)); err != nil {
		rollback()
		return 0, fmt.Errorf("create %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(fq, mssql.BulkOptions{Tablock: true}, storage.ColumnNames(t.Columns)...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i, r := range t.Rows {
		args, err := storage.FlatRow(t.Columns, r)
		if err == nil {
			_, err = stmt.ExecContext(ctx, args...)
		}
		if err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk %s row %d: %w", t.Name, i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Close closes the pool.
func (s *Sink) Close() error { return s.db.Close() }

// msIdent brackets an identifier, doubling embedded closing brackets.
func msIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}
