// Package postgres implements the item repo on PostgreSQL via pgxpool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stash-sh/stash"
)

// Tables is an alias for stash.Tables for package compatibility.
type Tables = stash.Tables

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.Item}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Get(ctx context.Context, client uuid.UUID, key string) (stash.Item, error) {
	query := fmt.Sprintf(`
		SELECT str_value, json_value, blob_value, created_at, updated_at
		FROM %s
		WHERE client = $1 AND key = $2
	`, r.tableName)

	var strVal *string
	var jsonVal []byte
	var blobVal []byte
	item := stash.Item{Client: client, Key: key}

	err := r.pool.QueryRow(ctx, query, client, key).Scan(
		&strVal, &jsonVal, &blobVal, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stash.Item{}, stash.ErrNotFound
		}
		return stash.Item{}, fmt.Errorf("get: %w", err)
	}

	// decode precedence: string, then json, then blob
	switch {
	case strVal != nil:
		item.Value = stash.StringValue(*strVal)
	case jsonVal != nil:
		item.Value = stash.JSONValue(json.RawMessage(jsonVal))
	case blobVal != nil:
		item.Value = stash.BlobValue(blobVal)
	default:
		return stash.Item{}, fmt.Errorf("get: row for %q has no value: %w", key, stash.ErrInternal)
	}

	return item, nil
}

func (r *Repo) Put(ctx context.Context, client uuid.UUID, key string, value stash.Value) (stash.Item, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (client, key, str_value, json_value, blob_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client, key) DO UPDATE
		SET str_value = EXCLUDED.str_value,
			json_value = EXCLUDED.json_value,
			blob_value = EXCLUDED.blob_value,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, r.tableName)

	var strVal *string
	var jsonVal []byte
	var blobVal []byte

	switch value.Kind {
	case stash.TagJSON:
		jsonVal = value.JSON
	case stash.TagBlob:
		blobVal = value.Blob
	default:
		strVal = &value.Str
	}

	item := stash.Item{Client: client, Key: key, Value: value}
	err := r.pool.QueryRow(ctx, query, client, key, strVal, jsonVal, blobVal).Scan(
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return stash.Item{}, fmt.Errorf("put: %w", err)
	}

	return item, nil
}

func (r *Repo) Delete(ctx context.Context, client uuid.UUID, key string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE client = $1 AND key = $2
	`, r.tableName)

	// deleting a missing key is success, so the affected row count is
	// deliberately ignored
	_, err := r.pool.Exec(ctx, query, client, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT count(key) FROM %s`, r.tableName)

	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	return count, nil
}
