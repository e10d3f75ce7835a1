package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stash-sh/stash"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// Migrate creates the item table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, tables stash.Tables) error {
	if err := createItemTable(ctx, db, tables.Item); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func createItemTable(ctx context.Context, db *sql.DB, tableName string) error {
	quotedTable := quoteIdentifier(tableName)

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			client TEXT NOT NULL,
			key TEXT NOT NULL,
			str_value TEXT,
			json_value TEXT,
			blob_value BLOB,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (client, key),
			CHECK (
				(str_value IS NOT NULL) + (json_value IS NOT NULL) + (blob_value IS NOT NULL) <= 1
			)
		)
	`, quotedTable)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create item table: %w", err)
	}

	return nil
}

// DropTables removes the item table. Used by tests.
func DropTables(ctx context.Context, db *sql.DB, tables stash.Tables) error {
	quotedTable := quoteIdentifier(tables.Item)
	_, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable))
	return err
}
