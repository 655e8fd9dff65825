// Package users keeps the roster of subjects seen by the API.
package users

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erazemk/narocila/internal/datastore"
	"github.com/erazemk/narocila/internal/model"
)

// Kind is the datastore kind holding user records.
const Kind = "users"

// Ensure records a subject on its first verified request. Idempotent.
func Ensure(ctx context.Context, store datastore.Store, subject, name string) error {
	existing, err := store.Query(ctx, Kind, "user_id", subject, 1, 0)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	raw, err := json.Marshal(model.User{UserID: subject, Name: name})
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if _, err := store.Put(ctx, Kind, 0, raw); err != nil {
		return fmt.Errorf("recording user: %w", err)
	}
	return nil
}

// List returns every registered user.
func List(ctx context.Context, store datastore.Store) ([]model.User, error) {
	entities, err := store.Query(ctx, Kind, "", nil, -1, 0)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	list := make([]model.User, 0, len(entities))
	for _, ent := range entities {
		var user model.User
		if err := json.Unmarshal(ent.Doc, &user); err != nil {
			return nil, fmt.Errorf("decoding user %d: %w", ent.ID, err)
		}
		list = append(list, user)
	}
	return list, nil
}
