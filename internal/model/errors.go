package model

import "errors"

// Sentinel errors returned by the resource and relation layers. The API
// layer maps these to status codes and response messages.
var (
	// ErrNotFound means no entity with the requested id exists.
	ErrNotFound = errors.New("entity not found")

	// ErrForbidden means the entity exists but belongs to another owner.
	ErrForbidden = errors.New("entity belongs to another owner")

	// ErrIncomplete means a create or replace payload is missing a
	// required attribute, or the body could not be parsed.
	ErrIncomplete = errors.New("missing required attribute")

	// ErrAlreadyAssigned means the item is already on an order.
	ErrAlreadyAssigned = errors.New("item already assigned to an order")

	// ErrNotAssigned means the item is not on the given order.
	ErrNotAssigned = errors.New("item not on this order")
)
