// Package relation keeps the item/order association consistent: an item's
// order ref points at an order exactly when that order's items list holds
// a ref back to the item. Every two-entity mutation runs in one store
// transaction.
package relation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erazemk/narocila/internal/datastore"
	"github.com/erazemk/narocila/internal/model"
	"github.com/erazemk/narocila/internal/resource"
)

// Manager maintains the item/order association.
type Manager struct {
	store datastore.Store
}

// New creates a relationship manager on the given store.
func New(store datastore.Store) *Manager {
	return &Manager{store: store}
}

func loadItem(ctx context.Context, st datastore.Store, id int64) (*model.Item, error) {
	ent, err := st.Get(ctx, resource.Items.Kind, id)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item := &model.Item{}
	if err := json.Unmarshal(ent.Doc, item); err != nil {
		return nil, fmt.Errorf("decoding item %d: %w", id, err)
	}
	return item, nil
}

func loadOrder(ctx context.Context, st datastore.Store, id int64) (*model.Order, error) {
	ent, err := st.Get(ctx, resource.Orders.Kind, id)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	order := &model.Order{}
	if err := json.Unmarshal(ent.Doc, order); err != nil {
		return nil, fmt.Errorf("decoding order %d: %w", id, err)
	}
	return order, nil
}

func saveItem(ctx context.Context, st datastore.Store, id int64, item *model.Item) error {
	item.Strip()
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item %d: %w", id, err)
	}
	_, err = st.Put(ctx, resource.Items.Kind, id, raw)
	return err
}

func saveOrder(ctx context.Context, st datastore.Store, id int64, order *model.Order) error {
	order.Strip()
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding order %d: %w", id, err)
	}
	_, err = st.Put(ctx, resource.Orders.Kind, id, raw)
	return err
}

// removeRef drops the ref with the given id from a ref list, reporting
// whether it was present.
func removeRef(refs []model.Ref, id int64) ([]model.Ref, bool) {
	for i, ref := range refs {
		if ref.ID == id {
			return append(refs[:i], refs[i+1:]...), true
		}
	}
	return refs, false
}

// Associate puts an item on an order. Both entities must exist, the order
// must belong to the caller, and the item must not already sit on any
// order (this one included).
func (m *Manager) Associate(ctx context.Context, owner string, orderID, itemID int64, base string) error {
	return m.store.Transact(ctx, func(tx datastore.Store) error {
		order, err := loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		item, err := loadItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if order.Owner() != owner {
			return model.ErrForbidden
		}

		for _, ref := range order.Items {
			if ref.ID == itemID {
				return model.ErrAlreadyAssigned
			}
		}
		// One order per item: an item on another order is a conflict too.
		if item.Order != nil {
			return model.ErrAlreadyAssigned
		}

		order.Items = append(order.Items, model.Ref{
			ID:   itemID,
			Self: resource.SelfLink(base, resource.Items.Path, itemID),
		})
		if err := saveOrder(ctx, tx, orderID, order); err != nil {
			return err
		}

		item.Order = &model.Ref{
			ID:   orderID,
			Self: resource.SelfLink(base, resource.Orders.Path, orderID),
		}
		return saveItem(ctx, tx, itemID, item)
	})
}

// Disassociate takes an item off an order, clearing both sides.
func (m *Manager) Disassociate(ctx context.Context, owner string, orderID, itemID int64) error {
	return m.store.Transact(ctx, func(tx datastore.Store) error {
		order, err := loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		item, err := loadItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if order.Owner() != owner {
			return model.ErrForbidden
		}

		refs, found := removeRef(order.Items, itemID)
		if !found {
			return model.ErrNotAssigned
		}

		order.Items = refs
		if err := saveOrder(ctx, tx, orderID, order); err != nil {
			return err
		}

		item.Order = nil
		return saveItem(ctx, tx, itemID, item)
	})
}

// CascadeItemDelete removes a deleted item's ref from the order it sits
// on. Runs inside the item's delete transaction. The order having already
// vanished is not an error.
func (m *Manager) CascadeItemDelete(ctx context.Context, tx datastore.Store, itemID int64, item *model.Item) error {
	if item.Order == nil {
		return nil
	}

	order, err := loadOrder(ctx, tx, item.Order.ID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	refs, found := removeRef(order.Items, itemID)
	if !found {
		return nil
	}

	order.Items = refs
	return saveOrder(ctx, tx, item.Order.ID, order)
}

// CascadeOrderDelete clears the back-ref of every item on a deleted
// order. Runs inside the order's delete transaction. Refs to missing
// items are skipped.
func (m *Manager) CascadeOrderDelete(ctx context.Context, tx datastore.Store, orderID int64, order *model.Order) error {
	for _, ref := range order.Items {
		item, err := loadItem(ctx, tx, ref.ID)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		if item.Order == nil || item.Order.ID != orderID {
			continue
		}

		item.Order = nil
		if err := saveItem(ctx, tx, ref.ID, item); err != nil {
			return err
		}
	}
	return nil
}

// ItemsOfOrder returns the full, enriched items referenced by an order,
// after the order's not-found and ownership checks. Refs whose item no
// longer exists are skipped.
func (m *Manager) ItemsOfOrder(ctx context.Context, owner string, orderID int64, base string) ([]*model.Item, error) {
	order, err := loadOrder(ctx, m.store, orderID)
	if err != nil {
		return nil, err
	}
	if order.Owner() != owner {
		return nil, model.ErrForbidden
	}

	items := make([]*model.Item, 0, len(order.Items))
	for _, ref := range order.Items {
		item, err := loadItem(ctx, m.store, ref.ID)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		item.Enrich(ref.ID, resource.SelfLink(base, resource.Items.Path, ref.ID))
		items = append(items, item)
	}
	return items, nil
}
