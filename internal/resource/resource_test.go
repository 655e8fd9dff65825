package resource

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/narocila/internal/datastore"
	"github.com/erazemk/narocila/internal/model"
)

const base = "http://api.test"

func itemService(t *testing.T) (*Service[*model.Item], datastore.Store) {
	t.Helper()
	store := datastore.NewTestStore(t)
	return NewService(store, Items), store
}

func createItem(t *testing.T, svc *Service[*model.Item], owner, name string) *model.Item {
	t.Helper()
	payload := []byte(`{"name": "` + name + `", "quantity": 2, "description": "test item"}`)
	item, err := svc.Create(context.Background(), owner, payload, base)
	require.NoError(t, err)
	return item
}

func TestCreateBindsOwner(t *testing.T) {
	svc, _ := itemService(t)

	payload := []byte(`{"name": "bolt", "quantity": 5, "description": "m6", "owner_id": "mallory"}`)
	item, err := svc.Create(context.Background(), "alice", payload, base)
	require.NoError(t, err)

	assert.Equal(t, "alice", item.OwnerID, "owner comes from the token subject, never the payload")
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, base+"/items/1", item.Self)
}

func TestCreateMissingField(t *testing.T) {
	svc, _ := itemService(t)

	tests := []string{
		`{"quantity": 5, "description": "m6"}`,
		`{"name": "bolt", "description": "m6"}`,
		`{"name": "bolt", "quantity": 5}`,
		`not json`,
	}
	for _, payload := range tests {
		_, err := svc.Create(context.Background(), "alice", []byte(payload), base)
		assert.ErrorIs(t, err, model.ErrIncomplete, payload)
	}
}

func TestCreateZeroValuesAreValid(t *testing.T) {
	store := datastore.NewTestStore(t)
	svc := NewService(store, Orders)

	payload := []byte(`{"has_shipped": false, "date": "", "location": ""}`)
	order, err := svc.Create(context.Background(), "alice", payload, base)
	require.NoError(t, err)
	assert.False(t, order.HasShipped)
}

func TestGetChecks(t *testing.T) {
	svc, _ := itemService(t)
	item := createItem(t, svc, "alice", "bolt")
	ctx := context.Background()

	_, err := svc.Get(ctx, "alice", 42, base)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Get(ctx, "bob", 1, base)
	assert.ErrorIs(t, err, model.ErrForbidden)

	got, err := svc.Get(ctx, "alice", 1, base)
	require.NoError(t, err)
	assert.Equal(t, item.Name, got.Name)
	assert.Equal(t, base+"/items/1", got.Self)
}

func TestListPagination(t *testing.T) {
	svc, _ := itemService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		createItem(t, svc, "alice", "item")
	}
	createItem(t, svc, "bob", "other")

	page, total, next, err := svc.List(ctx, "alice", 5, 0, base)
	require.NoError(t, err)
	assert.Len(t, page, 5)
	assert.Equal(t, 7, total)
	assert.Equal(t, base+"/items?limit=5&offset=5", next)
	for _, item := range page {
		assert.Equal(t, 7, item.TotalItems)
		assert.NotEmpty(t, item.Self)
	}

	rest, total, next, err := svc.List(ctx, "alice", 5, 5, base)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Equal(t, 7, total)
	assert.Empty(t, next, "no next link on the last page")
}

func TestListScopedToOwner(t *testing.T) {
	svc, _ := itemService(t)
	createItem(t, svc, "alice", "mine")
	createItem(t, svc, "bob", "theirs")

	page, total, _, err := svc.List(context.Background(), "alice", 5, 0, base)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "mine", page[0].Name)
}

func TestPatch(t *testing.T) {
	svc, _ := itemService(t)
	createItem(t, svc, "alice", "bolt")
	ctx := context.Background()

	item, err := svc.Patch(ctx, "alice", 1, []byte(`{"quantity": 0}`), base)
	require.NoError(t, err)
	assert.Zero(t, item.Quantity)

	// A zero current value can still be patched.
	item, err = svc.Patch(ctx, "alice", 1, []byte(`{"quantity": 9}`), base)
	require.NoError(t, err)
	assert.Equal(t, 9, item.Quantity)
	assert.Equal(t, "bolt", item.Name, "unpatched fields survive")

	_, err = svc.Patch(ctx, "bob", 1, []byte(`{"quantity": 1}`), base)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.Patch(ctx, "alice", 42, []byte(`{"quantity": 1}`), base)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPatchCannotMoveOwnerOrRelation(t *testing.T) {
	svc, _ := itemService(t)
	createItem(t, svc, "alice", "bolt")

	item, err := svc.Patch(context.Background(), "alice", 1,
		[]byte(`{"owner_id": "mallory", "order": {"id": 9, "self": "x"}}`), base)
	require.NoError(t, err)
	assert.Equal(t, "alice", item.OwnerID)
	assert.Nil(t, item.Order)
}

func TestReplace(t *testing.T) {
	svc, _ := itemService(t)
	createItem(t, svc, "alice", "bolt")
	ctx := context.Background()

	_, err := svc.Replace(ctx, "alice", 1, []byte(`{"name": "nut"}`), base)
	assert.ErrorIs(t, err, model.ErrIncomplete)

	item, err := svc.Replace(ctx, "alice", 1,
		[]byte(`{"name": "nut", "quantity": 1, "description": "m8", "owner_id": "mallory"}`), base)
	require.NoError(t, err)
	assert.Equal(t, "nut", item.Name)
	assert.Equal(t, "alice", item.OwnerID, "owner preserved across replace")
}

func TestReplacePreservesRelation(t *testing.T) {
	svc, store := itemService(t)
	createItem(t, svc, "alice", "bolt")
	ctx := context.Background()

	// Simulate an existing association.
	ref := &model.Ref{ID: 7, Self: base + "/orders/7"}
	item, err := svc.Get(ctx, "alice", 1, base)
	require.NoError(t, err)
	item.Order = ref
	item.Strip()
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	_, err = store.Put(ctx, Items.Kind, 1, raw)
	require.NoError(t, err)

	replaced, err := svc.Replace(ctx, "alice", 1,
		[]byte(`{"name": "nut", "quantity": 1, "description": "m8"}`), base)
	require.NoError(t, err)
	require.NotNil(t, replaced.Order)
	assert.Equal(t, int64(7), replaced.Order.ID)
}

func TestDelete(t *testing.T) {
	svc, _ := itemService(t)
	createItem(t, svc, "alice", "bolt")
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, "bob", 1), model.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "alice", 1))
	assert.ErrorIs(t, svc.Delete(ctx, "alice", 1), model.ErrNotFound)
}

func TestDeleteRunsHook(t *testing.T) {
	svc, _ := itemService(t)
	createItem(t, svc, "alice", "bolt")

	var hookID int64
	svc.OnDelete(func(ctx context.Context, tx datastore.Store, id int64, item *model.Item) error {
		hookID = id
		return nil
	})

	require.NoError(t, svc.Delete(context.Background(), "alice", 1))
	assert.Equal(t, int64(1), hookID)
}
