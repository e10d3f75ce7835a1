package stash

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepo defines the interface for item persistence. Implementations
// must scope every operation by the owning client id so sessions stay
// isolated from one another's keys, and must hold a pooled connection
// no longer than one statement.
//
// All methods accept a context for cancellation and timeout control.
type ItemRepo interface {
	// Get retrieves the item stored under (client, key).
	//
	// Returns ErrNotFound when no row exists for the pair. Exactly one
	// payload kind is populated on the returned item, decided by which
	// value column is non-null (string wins over json wins over blob).
	Get(ctx context.Context, client uuid.UUID, key string) (Item, error)

	// Put inserts or replaces the item under (client, key). The write
	// nulls whichever value columns the new kind does not use, so a row
	// never carries more than one payload.
	Put(ctx context.Context, client uuid.UUID, key string, value Value) (Item, error)

	// Delete removes the item under (client, key). Deleting a missing
	// key is not an error.
	Delete(ctx context.Context, client uuid.UUID, key string) error

	// Count reports the number of stored items. It doubles as the
	// schema probe during bootstrap: a failing count means the item
	// table is missing or unusable.
	Count(ctx context.Context) (int64, error)
}
