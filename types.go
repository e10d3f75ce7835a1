package stash

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Tag identifies one of the recognized storage payload kinds.
type Tag string

const (
	// TagString stores the body as plain text.
	TagString Tag = "string"
	// TagJSON stores the canonical re-serialization of a JSON body.
	TagJSON Tag = "json"
	// TagBlob stores the first file part of a multipart body.
	TagBlob Tag = "blob"
	// TagHTML negotiates from text/html and stores like TagString.
	TagHTML Tag = "html"
)

func (t Tag) IsValid() bool {
	switch t {
	case TagString, TagJSON, TagBlob, TagHTML:
		return true
	default:
		return false
	}
}

// ParseTag converts a string to a Tag.
func ParseTag(s string) (Tag, error) {
	tag := Tag(s)
	if !tag.IsValid() {
		return "", fmt.Errorf("invalid tag: %s (valid tags: string, json, blob, html)", s)
	}
	return tag, nil
}

// Claims is the ephemeral identity signed into a bearer token. It is
// never persisted: it exists only as request-scoped context and as the
// token round-tripped through headers.
type Claims struct {
	// ID is the opaque session identifier, stable for the life of the
	// bearer token.
	ID uuid.UUID `json:"id"`
	// Issuer is the serving host that minted the token.
	Issuer string `json:"issuer"`
	// TTL is the advisory seconds-to-live echoed to the client.
	TTL int `json:"ttl"`
	// IssuedAt records when the token was minted.
	IssuedAt time.Time `json:"issued_at"`
}

// NewClaims mints a fresh session identity with a generated id.
func NewClaims(issuer string, ttl int) Claims {
	return Claims{
		ID:       uuid.New(),
		Issuer:   issuer,
		TTL:      ttl,
		IssuedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Value is the tagged union stored per (client, key) pair. Exactly one
// of Str, JSON, Blob is set, selected by Kind. The storage layer maps
// this onto three nullable columns with the same at-most-one invariant.
type Value struct {
	Kind Tag
	Str  string
	JSON json.RawMessage
	Blob []byte
}

// StringValue builds a string-kind value.
func StringValue(s string) Value {
	return Value{Kind: TagString, Str: s}
}

// JSONValue builds a json-kind value.
func JSONValue(doc json.RawMessage) Value {
	return Value{Kind: TagJSON, JSON: doc}
}

// BlobValue builds a blob-kind value.
func BlobValue(b []byte) Value {
	return Value{Kind: TagBlob, Blob: b}
}

// Item is one stored unit, uniquely identified by (Client, Key).
type Item struct {
	Client    uuid.UUID `json:"client"`
	Key       string    `json:"key"`
	Value     Value     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tables holds configurable table names for item storage.
type Tables struct {
	Item string `mapstructure:"item"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Item == "" {
		return fmt.Errorf("validate tables: item table name cannot be empty")
	}

	if !IsValidTableName(t.Item) {
		return fmt.Errorf("validate tables: invalid item table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Item)
	}

	return nil
}
