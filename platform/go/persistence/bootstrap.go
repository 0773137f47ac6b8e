package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/zenGate-Global/local-library/database"
)

// BootstrapCatalogSchema applies the catalog DDL in a single transaction, in this order:
//  1. catalog/collations.sql
//  2. catalog/genres.sql
//  3. catalog/books.sql
//
// SQL is embedded at build time so binaries stay self-contained. Every statement
// is idempotent, so the helper is safe to run on each server start, from the CLI and in tests.
func BootstrapCatalogSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("bootstrap catalog schema: pool is required")
	}

	var statements []string
	statements = append(statements, splitStatements(sqlassets.CollationsSQL)...)
	statements = append(statements, splitStatements(sqlassets.GenresSQL)...)
	statements = append(statements, splitStatements(sqlassets.BooksSQL)...)

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply ddl: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func splitStatements(contents string) []string {
	raw := strings.Split(contents, ";")
	statements := make([]string, 0, len(raw))
	for _, part := range raw {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}
