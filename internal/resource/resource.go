// Package resource implements ownership-scoped CRUD over a single
// document kind, shared by the item and order collections.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/erazemk/narocila/internal/datastore"
	"github.com/erazemk/narocila/internal/model"
)

// DefaultLimit is the page size used when the caller supplies none.
const DefaultLimit = 5

// Document is the contract a resource type must satisfy. Enrichment
// fields (id, self, total count) live on the type itself and are stripped
// before persisting.
type Document interface {
	Owner() string
	SetOwner(string)
	Required() []string
	ApplyPatch(map[string]any)
	Enrich(id int64, self string)
	Strip()
	SetTotal(int)
}

// Definition describes one resource kind.
type Definition[T Document] struct {
	Kind string   // datastore kind
	Path string   // URL path segment, also used for self links
	New  func() T // fresh zero document
}

// Items describes the item collection.
var Items = Definition[*model.Item]{
	Kind: "items",
	Path: "items",
	New:  func() *model.Item { return &model.Item{} },
}

// Orders describes the order collection.
var Orders = Definition[*model.Order]{
	Kind: "orders",
	Path: "orders",
	New:  func() *model.Order { return &model.Order{} },
}

// SelfLink builds the canonical URL for a resource instance.
func SelfLink(base, path string, id int64) string {
	return base + "/" + path + "/" + strconv.FormatInt(id, 10)
}

// DeleteHook runs inside the delete transaction before the entity is
// removed, with the transactional store view.
type DeleteHook[T Document] func(ctx context.Context, tx datastore.Store, id int64, doc T) error

// Service is the CRUD service for one resource kind. Every operation
// takes the verified subject and enforces ownership before touching the
// entity.
type Service[T Document] struct {
	store        datastore.Store
	def          Definition[T]
	beforeDelete DeleteHook[T]
}

// NewService creates a service for a resource kind on the given store.
func NewService[T Document](store datastore.Store, def Definition[T]) *Service[T] {
	return &Service[T]{store: store, def: def}
}

// OnDelete registers a hook run before an entity is deleted.
func (s *Service[T]) OnDelete(hook DeleteHook[T]) { s.beforeDelete = hook }

// load fetches and decodes an entity from the given store view.
func (s *Service[T]) load(ctx context.Context, st datastore.Store, id int64) (T, error) {
	var zero T
	ent, err := st.Get(ctx, s.def.Kind, id)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return zero, model.ErrNotFound
	}
	if err != nil {
		return zero, err
	}

	doc := s.def.New()
	if err := json.Unmarshal(ent.Doc, doc); err != nil {
		return zero, fmt.Errorf("decoding %s/%d: %w", s.def.Kind, id, err)
	}
	return doc, nil
}

// save persists a document, stripping enrichment fields first. A zero id
// assigns a new one.
func (s *Service[T]) save(ctx context.Context, st datastore.Store, id int64, doc T) (int64, error) {
	doc.Strip()
	raw, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encoding %s: %w", s.def.Kind, err)
	}
	return st.Put(ctx, s.def.Kind, id, raw)
}

// decode parses a request body into a key/value map. Any parse failure is
// reported as an incomplete payload.
func decode(payload []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, model.ErrIncomplete
	}
	return fields, nil
}

// validate checks that every required attribute is present in the payload.
// Presence is what matters: false and 0 are valid values.
func validate(doc Document, fields map[string]any) error {
	for _, key := range doc.Required() {
		if _, ok := fields[key]; !ok {
			return model.ErrIncomplete
		}
	}
	return nil
}

// Create stores a new entity owned by the verified subject. The payload
// must carry every required attribute; owner_id in the payload is ignored.
func (s *Service[T]) Create(ctx context.Context, owner string, payload []byte, base string) (T, error) {
	var zero T

	fields, err := decode(payload)
	if err != nil {
		return zero, err
	}

	doc := s.def.New()
	if err := validate(doc, fields); err != nil {
		return zero, err
	}

	doc.ApplyPatch(fields)
	doc.SetOwner(owner)

	id, err := s.save(ctx, s.store, 0, doc)
	if err != nil {
		return zero, err
	}

	doc.Enrich(id, SelfLink(base, s.def.Path, id))
	return doc, nil
}

// List returns one page of the subject's entities in store order, the
// subject's total entity count, and the next-page URL ("" when the page
// reaches the end).
func (s *Service[T]) List(ctx context.Context, owner string, limit, offset int, base string) ([]T, int, string, error) {
	total, err := s.store.Count(ctx, s.def.Kind, "owner_id", owner)
	if err != nil {
		return nil, 0, "", err
	}

	entities, err := s.store.Query(ctx, s.def.Kind, "owner_id", owner, limit, offset)
	if err != nil {
		return nil, 0, "", err
	}

	docs := make([]T, 0, len(entities))
	for _, ent := range entities {
		doc := s.def.New()
		if err := json.Unmarshal(ent.Doc, doc); err != nil {
			return nil, 0, "", fmt.Errorf("decoding %s/%d: %w", s.def.Kind, ent.ID, err)
		}
		doc.Enrich(ent.ID, SelfLink(base, s.def.Path, ent.ID))
		doc.SetTotal(total)
		docs = append(docs, doc)
	}

	next := ""
	if offset+limit < total {
		next = fmt.Sprintf("%s/%s?limit=%d&offset=%d", base, s.def.Path, limit, offset+limit)
	}

	return docs, total, next, nil
}

// Get returns one entity after the not-found and ownership checks.
func (s *Service[T]) Get(ctx context.Context, owner string, id int64, base string) (T, error) {
	var zero T

	doc, err := s.load(ctx, s.store, id)
	if err != nil {
		return zero, err
	}
	if doc.Owner() != owner {
		return zero, model.ErrForbidden
	}

	doc.Enrich(id, SelfLink(base, s.def.Path, id))
	return doc, nil
}

// Patch overwrites the schema fields present in the patch and persists
// once. Unknown and protected keys are ignored.
func (s *Service[T]) Patch(ctx context.Context, owner string, id int64, payload []byte, base string) (T, error) {
	var zero T

	doc, err := s.load(ctx, s.store, id)
	if err != nil {
		return zero, err
	}
	if doc.Owner() != owner {
		return zero, model.ErrForbidden
	}

	fields, err := decode(payload)
	if err != nil {
		return zero, err
	}

	doc.ApplyPatch(fields)
	if _, err := s.save(ctx, s.store, id, doc); err != nil {
		return zero, err
	}

	doc.Enrich(id, SelfLink(base, s.def.Path, id))
	return doc, nil
}

// Replace overwrites all schema fields from a full payload, validated
// like Create. The owner and any relationship refs are preserved.
func (s *Service[T]) Replace(ctx context.Context, owner string, id int64, payload []byte, base string) (T, error) {
	var zero T

	doc, err := s.load(ctx, s.store, id)
	if err != nil {
		return zero, err
	}
	if doc.Owner() != owner {
		return zero, model.ErrForbidden
	}

	fields, err := decode(payload)
	if err != nil {
		return zero, err
	}
	if err := validate(doc, fields); err != nil {
		return zero, err
	}

	doc.ApplyPatch(fields)
	if _, err := s.save(ctx, s.store, id, doc); err != nil {
		return zero, err
	}

	doc.Enrich(id, SelfLink(base, s.def.Path, id))
	return doc, nil
}

// Delete removes an entity. The delete hook and the removal run in one
// store transaction so relationship cleanup cannot be torn.
func (s *Service[T]) Delete(ctx context.Context, owner string, id int64) error {
	return s.store.Transact(ctx, func(tx datastore.Store) error {
		doc, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if doc.Owner() != owner {
			return model.ErrForbidden
		}

		if s.beforeDelete != nil {
			if err := s.beforeDelete(ctx, tx, id, doc); err != nil {
				return err
			}
		}

		return tx.Delete(ctx, s.def.Kind, id)
	})
}
