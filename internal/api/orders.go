package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/narocila/internal/model"
	"github.com/erazemk/narocila/internal/relation"
	"github.com/erazemk/narocila/internal/resource"
)

// OrdersHandler handles the order collection endpoints, including the
// association endpoints under /orders/{oid}/items.
type OrdersHandler struct {
	Service  *resource.Service[*model.Order]
	Relation *relation.Manager
}

// writeOrderError maps a service error onto the order status codes.
func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, msgNoOrder)
	case errors.Is(err, model.ErrForbidden):
		jsonError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, model.ErrIncomplete):
		jsonError(w, http.StatusBadRequest, msgMissingFields)
	default:
		slog.Error("order request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, msgInternal)
	}
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := GetClaims(r.Context()).Subject
	order, err := h.Service.Create(r.Context(), owner, readBody(r), baseURL(r))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, order)
}

// List handles GET /orders.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, msgBadPagination)
		return
	}

	owner := GetClaims(r.Context()).Subject
	orders, _, next, err := h.Service.List(r.Context(), owner, limit, offset, baseURL(r))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	output := map[string]any{"orders": orders}
	if next != "" {
		output["next"] = next
	}
	jsonResponse(w, http.StatusOK, output)
}

// Get handles GET /orders/{id}.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoOrder)
		return
	}

	owner := GetClaims(r.Context()).Subject
	order, err := h.Service.Get(r.Context(), owner, id, baseURL(r))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Patch handles PATCH /orders/{id}.
func (h *OrdersHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoOrder)
		return
	}

	owner := GetClaims(r.Context()).Subject
	order, err := h.Service.Patch(r.Context(), owner, id, readBody(r), baseURL(r))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Replace handles PUT /orders/{id}.
func (h *OrdersHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoOrder)
		return
	}

	owner := GetClaims(r.Context()).Subject
	order, err := h.Service.Replace(r.Context(), owner, id, readBody(r), baseURL(r))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// Delete handles DELETE /orders/{id}. Every item on the order has its
// back-ref cleared in the same transaction.
func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoOrder)
		return
	}

	owner := GetClaims(r.Context()).Subject
	if err := h.Service.Delete(r.Context(), owner, id); err != nil {
		writeOrderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Associate handles PUT /orders/{oid}/items/{iid}.
func (h *OrdersHandler) Associate(w http.ResponseWriter, r *http.Request) {
	oid, okO := pathID(r, "oid")
	iid, okI := pathID(r, "iid")
	if !okO || !okI {
		jsonError(w, http.StatusNotFound, msgNoOrderOrItem)
		return
	}

	owner := GetClaims(r.Context()).Subject
	err := h.Relation.Associate(r.Context(), owner, oid, iid, baseURL(r))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, msgNoOrderOrItem)
	case errors.Is(err, model.ErrForbidden):
		jsonError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, model.ErrAlreadyAssigned):
		jsonError(w, http.StatusForbidden, msgDuplicateItem)
	default:
		slog.Error("associate failed", "error", err)
		jsonError(w, http.StatusInternalServerError, msgInternal)
	}
}

// Disassociate handles DELETE /orders/{oid}/items/{iid}.
func (h *OrdersHandler) Disassociate(w http.ResponseWriter, r *http.Request) {
	oid, okO := pathID(r, "oid")
	iid, okI := pathID(r, "iid")
	if !okO || !okI {
		jsonError(w, http.StatusNotFound, msgNoOrderOrItem)
		return
	}

	owner := GetClaims(r.Context()).Subject
	err := h.Relation.Disassociate(r.Context(), owner, oid, iid)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, msgNoOrderOrItem)
	case errors.Is(err, model.ErrForbidden):
		jsonError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, model.ErrNotAssigned):
		jsonError(w, http.StatusNotFound, msgItemNotOnOrder)
	default:
		slog.Error("disassociate failed", "error", err)
		jsonError(w, http.StatusInternalServerError, msgInternal)
	}
}

// ListItems handles GET /orders/{id}/items. An order with no items
// answers 204 with an empty body.
func (h *OrdersHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoOrderPlain)
		return
	}

	owner := GetClaims(r.Context()).Subject
	items, err := h.Relation.ItemsOfOrder(r.Context(), owner, id, baseURL(r))
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, msgNoOrderPlain)
		return
	case errors.Is(err, model.ErrForbidden):
		jsonError(w, http.StatusForbidden, msgForbidden)
		return
	default:
		slog.Error("listing order items failed", "error", err)
		jsonError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if len(items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}
