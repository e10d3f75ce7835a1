package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stash-sh/stash"
)

// Migrate creates the item table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables stash.Tables) error {
	if err := createItemTable(ctx, pool, tables.Item); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func createItemTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	checkName := pgx.Identifier{fmt.Sprintf("%s_single_value", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			client UUID NOT NULL,
			key TEXT NOT NULL,
			str_value TEXT,
			json_value JSONB,
			blob_value BYTEA,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (client, key),
			CONSTRAINT %s CHECK (num_nonnulls(str_value, json_value, blob_value) <= 1)
		);
	`,
		quotedTable,
		checkName,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create item table: %w", err)
	}
	return nil
}

// DropTables removes the item table. Used by tests.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables stash.Tables) error {
	quotedTable := pgx.Identifier{tables.Item}.Sanitize()
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable))
	return err
}
