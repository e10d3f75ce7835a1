// Package sqlite implements the item repo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stash-sh/stash"
)

type Repo struct {
	db        *sql.DB
	tableName string
}

func NewRepo(db *sql.DB, tables stash.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: tables.Item}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) Get(ctx context.Context, client uuid.UUID, key string) (stash.Item, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT str_value, json_value, blob_value, created_at, updated_at
		FROM %s
		WHERE client = ? AND key = ?`, r.tableName)

	var strVal *string
	var jsonVal []byte
	var blobVal []byte
	var createdAt, updatedAt string
	item := stash.Item{Client: client, Key: key}

	err := r.db.QueryRowContext(ctx, query, client.String(), key).Scan(
		&strVal, &jsonVal, &blobVal, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stash.Item{}, stash.ErrNotFound
		}
		return stash.Item{}, fmt.Errorf("get: %w", err)
	}

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

	item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return stash.Item{}, fmt.Errorf("get: parse created_at: %w", err)
	}

	item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return stash.Item{}, fmt.Errorf("get: parse updated_at: %w", err)
	}

	return item, nil
}

func (r *Repo) Put(ctx context.Context, client uuid.UUID, key string, value stash.Value) (stash.Item, error) {
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

	// Check if the row exists first to keep created_at stable on replace
	var createdAt string
	checkQuery := fmt.Sprintf(`SELECT created_at FROM %s WHERE client = ? AND key = ?`, r.tableName) //nolint:gosec // table name is validated
	err := r.db.QueryRowContext(ctx, checkQuery, client.String(), key).Scan(&createdAt)
	isInsert := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isInsert {
		return stash.Item{}, fmt.Errorf("put: check existing: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	item := stash.Item{Client: client, Key: key, Value: value}

	if isInsert {
		insertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`INSERT INTO %s (client, key, str_value, json_value, blob_value, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, r.tableName)

		_, err = r.db.ExecContext(ctx, insertQuery,
			client.String(), key, strVal, jsonVal, blobVal, now, now,
		)
		if err != nil {
			return stash.Item{}, fmt.Errorf("put: insert: %w", err)
		}

		item.CreatedAt, _ = time.Parse(time.RFC3339Nano, now)
	} else {
		updateQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`UPDATE %s
			SET str_value = ?, json_value = ?, blob_value = ?, updated_at = ?
			WHERE client = ? AND key = ?`, r.tableName)

		_, err = r.db.ExecContext(ctx, updateQuery,
			strVal, jsonVal, blobVal, now, client.String(), key,
		)
		if err != nil {
			return stash.Item{}, fmt.Errorf("put: update: %w", err)
		}

		item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	}

	item.UpdatedAt, _ = time.Parse(time.RFC3339Nano, now)
	return item, nil
}

func (r *Repo) Delete(ctx context.Context, client uuid.UUID, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE client = ? AND key = ?`, r.tableName) //nolint:gosec // table name is validated

	// idempotent: missing rows are fine
	_, err := r.db.ExecContext(ctx, query, client.String(), key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT count(key) FROM %s`, r.tableName) //nolint:gosec // table name is validated

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	return count, nil
}
