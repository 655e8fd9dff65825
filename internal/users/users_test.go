package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/narocila/internal/datastore"
)

func TestEnsureIsIdempotent(t *testing.T) {
	store := datastore.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, Ensure(ctx, store, "auth0|1", "Alice"))
	require.NoError(t, Ensure(ctx, store, "auth0|1", "Alice"))
	require.NoError(t, Ensure(ctx, store, "auth0|2", "Bob"))

	list, err := List(ctx, store)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "auth0|1", list[0].UserID)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "auth0|2", list[1].UserID)
}

func TestListEmpty(t *testing.T) {
	store := datastore.NewTestStore(t)

	list, err := List(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, list)
}
