package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stash-sh/stash"
	"github.com/stash-sh/stash/database/postgres"
	"github.com/stash-sh/stash/database/sqlite"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config holds the configuration for connecting to an item backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string
	// DSN is the data source name (connection string). When empty for
	// postgres, a DSN is assembled from the DB_HOST/DB_USER/DB_PASS/
	// DB_NAME environment fallbacks.
	DSN string
	// Table is the name of the item table
	Table string
	// Attempts bounds the connect retry loop
	Attempts int
	// Wait is the pause between connect attempts
	Wait time.Duration
}

// Connect establishes a connection to the configured backend, verifies
// or initializes the item schema, and returns an ItemRepo. The returned
// cleanup function closes the underlying pool.
//
// Postgres connections are retried up to cfg.Attempts times with
// cfg.Wait between attempts; exhausting them is a fatal startup error.
func Connect(ctx context.Context, cfg Config) (stash.ItemRepo, func(), error) {
	tables := stash.Tables{Item: cfg.Table}
	if err := tables.Validate(); err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return connectSQLite(ctx, cfg.DSN, tables)
	case "postgres":
		return connectPostgres(ctx, cfg, tables)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// ResolveDSN returns the explicit DSN, or assembles one from the
// DB_HOST, DB_USER, DB_PASS, DB_NAME environment fallbacks. Having
// neither is a fatal configuration error.
func ResolveDSN(dsn string) (string, error) {
	if dsn != "" {
		return dsn, nil
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	name := os.Getenv("DB_NAME")

	if host != "" && user != "" && pass != "" && name != "" {
		return fmt.Sprintf("host=%s dbname=%s user=%s password=%s", host, name, user, pass), nil
	}

	return "", fmt.Errorf("no database connection details in configuration")
}

func connectSQLite(ctx context.Context, dsn string, tables stash.Tables) (stash.ItemRepo, func(), error) {
	if dsn == "" {
		return nil, nil, fmt.Errorf("no database connection details in configuration")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping sqlite: %w", err)
	}

	repo, err := sqlite.NewRepo(db, tables)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create sqlite repo: %w", err)
	}

	if err = ensureSchema(ctx, repo, func() error { return sqlite.Migrate(ctx, db, tables) }); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return repo, cleanup, nil
}

func connectPostgres(ctx context.Context, cfg Config, tables stash.Tables) (stash.ItemRepo, func(), error) {
	dsn, err := ResolveDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	pool, err := connectWithRetry(ctx, dsn, cfg.Attempts, cfg.Wait)
	if err != nil {
		return nil, nil, err
	}

	repo, err := postgres.NewRepo(pool, tables)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create postgres repo: %w", err)
	}

	if err = ensureSchema(ctx, repo, func() error { return postgres.Migrate(ctx, pool, tables) }); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("init postgres schema: %w", err)
	}

	return repo, pool.Close, nil
}

// connectWithRetry builds the pool, retrying a bounded number of times
// while the database comes up. This is the only retry loop in the
// system; per-request errors are never retried.
func connectWithRetry(ctx context.Context, dsn string, attempts int, wait time.Duration) (*pgxpool.Pool, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := pgxpool.New(ctx, dsn)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		slog.Error("failed to connect to database", "attempt", attempt, "attempts", attempts, "err", err)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

// ensureSchema probes the item table with a count query. Any failure is
// treated as "uninitialized" and triggers the schema migration once.
func ensureSchema(ctx context.Context, repo stash.ItemRepo, migrate func() error) error {
	count, err := repo.Count(ctx)
	if err == nil {
		slog.Debug("found item table", "records", count)
		return nil
	}

	slog.Info("initializing database schema")
	return migrate()
}
