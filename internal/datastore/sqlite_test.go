package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, fields map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return raw
}

func TestPutAssignsIDs(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	first, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"name": "a"}))
	require.NoError(t, err)
	second, err := store.Put(ctx, "orders", 0, doc(t, map[string]any{"location": "b"}))
	require.NoError(t, err)

	assert.NotZero(t, first)
	assert.NotEqual(t, first, second, "ids are unique across kinds")
}

func TestGetRoundTrip(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"name": "screwdriver"}))
	require.NoError(t, err)

	ent, err := store.Get(ctx, "items", id)
	require.NoError(t, err)
	assert.Equal(t, "items", ent.Kind)
	assert.Equal(t, id, ent.ID)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(ent.Doc, &fields))
	assert.Equal(t, "screwdriver", fields["name"])
}

func TestGetMissing(t *testing.T) {
	store := NewTestStore(t)

	_, err := store.Get(context.Background(), "items", 42)
	assert.ErrorIs(t, err, ErrNoSuchEntity)
}

func TestGetWrongKind(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"name": "a"}))
	require.NoError(t, err)

	_, err = store.Get(ctx, "orders", id)
	assert.ErrorIs(t, err, ErrNoSuchEntity)
}

func TestPutOverwrites(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"name": "old"}))
	require.NoError(t, err)

	same, err := store.Put(ctx, "items", id, doc(t, map[string]any{"name": "new"}))
	require.NoError(t, err)
	assert.Equal(t, id, same)

	ent, err := store.Get(ctx, "items", id)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(ent.Doc, &fields))
	assert.Equal(t, "new", fields["name"])
}

func TestDelete(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"name": "a"}))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "items", id))
	_, err = store.Get(ctx, "items", id)
	assert.ErrorIs(t, err, ErrNoSuchEntity)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "items", id))
}

func TestDeleteMulti(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"n": i}))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, store.DeleteMulti(ctx, "items", ids))
	n, err := store.Count(ctx, "items", "", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueryEqualityFilter(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"owner_id": "alice"}))
		require.NoError(t, err)
	}
	_, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"owner_id": "bob"}))
	require.NoError(t, err)

	mine, err := store.Query(ctx, "items", "owner_id", "alice", -1, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	n, err := store.Count(ctx, "items", "owner_id", "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestQueryPaginationAndOrder(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 7; i++ {
		id, err := store.Put(ctx, "items", 0, doc(t, map[string]any{"owner_id": "alice"}))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	page, err := store.Query(ctx, "items", "owner_id", "alice", 5, 0)
	require.NoError(t, err)
	require.Len(t, page, 5)
	for i, ent := range page {
		assert.Equal(t, ids[i], ent.ID, "stable id order")
	}

	rest, err := store.Query(ctx, "items", "owner_id", "alice", 5, 5)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, ids[5], rest[0].ID)
	assert.Equal(t, ids[6], rest[1].ID)
}

func TestTransactCommit(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	err := store.Transact(ctx, func(tx Store) error {
		if _, err := tx.Put(ctx, "items", 0, doc(t, map[string]any{"n": 1})); err != nil {
			return err
		}
		_, err := tx.Put(ctx, "orders", 0, doc(t, map[string]any{"n": 2}))
		return err
	})
	require.NoError(t, err)

	n, err := store.Count(ctx, "items", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTransactRollback(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transact(ctx, func(tx Store) error {
		if _, err := tx.Put(ctx, "items", 0, doc(t, map[string]any{"n": 1})); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Count(ctx, "items", "", nil)
	require.NoError(t, err)
	assert.Zero(t, n, "write rolled back")
}
