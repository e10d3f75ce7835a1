package database_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stash-sh/stash"
	"github.com/stash-sh/stash/database"
)

func TestResolveDSN(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		dsn, err := database.ResolveDSN("postgres://localhost/db")
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/db", dsn)
	})

	t.Run("environment fallbacks", func(t *testing.T) {
		t.Setenv("DB_HOST", "dbhost")
		t.Setenv("DB_USER", "dbuser")
		t.Setenv("DB_PASS", "dbpass")
		t.Setenv("DB_NAME", "dbname")

		dsn, err := database.ResolveDSN("")
		require.NoError(t, err)
		assert.Equal(t, "host=dbhost dbname=dbname user=dbuser password=dbpass", dsn)
	})

	t.Run("incomplete environment", func(t *testing.T) {
		t.Setenv("DB_HOST", "dbhost")
		t.Setenv("DB_USER", "")
		t.Setenv("DB_PASS", "")
		t.Setenv("DB_NAME", "")

		_, err := database.ResolveDSN("")
		assert.Error(t, err)
	})
}

func TestConnect_SQLite(t *testing.T) {
	ctx := context.Background()

	repo, cleanup, err := database.Connect(ctx, database.Config{
		Type:  "sqlite",
		DSN:   ":memory:",
		Table: "item",
	})
	require.NoError(t, err)
	defer cleanup()

	// the schema probe migrated an empty table
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	client := uuid.New()
	_, err = repo.Put(ctx, client, "key", stash.StringValue("value"))
	require.NoError(t, err)

	got, err := repo.Get(ctx, client, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", got.Value.Str)
}

func TestConnect_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		_, _, err := database.Connect(ctx, database.Config{Type: "mongodb", Table: "item"})
		assert.ErrorContains(t, err, "unsupported database type")
	})

	t.Run("invalid table name", func(t *testing.T) {
		_, _, err := database.Connect(ctx, database.Config{Type: "sqlite", DSN: ":memory:", Table: "Bad-Name"})
		assert.Error(t, err)
	})

	t.Run("sqlite without dsn", func(t *testing.T) {
		_, _, err := database.Connect(ctx, database.Config{Type: "sqlite", Table: "item"})
		assert.Error(t, err)
	})
}
