// Package datastore provides a small document store keyed by
// (kind, numeric id). Documents are opaque JSON; the store only ever
// inspects them for equality filtering on a top-level field.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoSuchEntity is returned by Get when no entity has the given key.
var ErrNoSuchEntity = errors.New("datastore: no such entity")

// Entity is a stored document and its key.
type Entity struct {
	Kind string
	ID   int64
	Doc  json.RawMessage
}

// Store is the document store contract. Implementations must provide
// read-after-write consistency per key; Transact gives atomicity across
// multiple keys.
type Store interface {
	// Get returns the entity with the given key, or ErrNoSuchEntity.
	Get(ctx context.Context, kind string, id int64) (*Entity, error)

	// Put writes doc under (kind, id). A zero id assigns a new
	// store-generated id, returned either way.
	Put(ctx context.Context, kind string, id int64, doc json.RawMessage) (int64, error)

	// Delete removes the entity with the given key. Deleting a missing
	// entity is not an error.
	Delete(ctx context.Context, kind string, id int64) error

	// DeleteMulti removes all listed entities of one kind.
	DeleteMulti(ctx context.Context, kind string, ids []int64) error

	// Query returns entities of a kind whose top-level field equals
	// value, in stable id order, paginated. An empty field matches all
	// entities of the kind. A negative limit means no limit.
	Query(ctx context.Context, kind, field string, value any, limit, offset int) ([]Entity, error)

	// Count returns the number of entities Query would match, ignoring
	// pagination.
	Count(ctx context.Context, kind, field string, value any) (int, error)

	// Transact runs fn against a transactional view of the store and
	// commits if fn returns nil, rolling back otherwise.
	Transact(ctx context.Context, fn func(tx Store) error) error
}
