package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	_ "modernc.org/sqlite"

	"github.com/stash-sh/stash"
	"github.com/stash-sh/stash/database/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo backed by an in-memory database with a
// unique table name for test isolation
func setupTestRepo(t *testing.T) (*sqlite.Repo, func()) {
	t.Helper()

	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err, "failed to open sqlite database")

	tableName := fmt.Sprintf("item_%s", getRandomString(t))
	tables := stash.Tables{Item: tableName}

	err = sqlite.Migrate(ctx, db, tables)
	assert.NoError(t, err, "failed to migrate")

	repo, err := sqlite.NewRepo(db, tables)
	assert.NoError(t, err, "failed to create repo")

	cleanup := func() {
		_ = db.Close()
	}

	return repo, cleanup
}
