package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/narocila/internal/model"
	"github.com/erazemk/narocila/internal/resource"
)

// ItemsHandler handles the item collection endpoints.
type ItemsHandler struct {
	Service *resource.Service[*model.Item]
}

// pathID parses a numeric id path segment. Reports ok=false when the
// segment is not an integer, which the caller treats as no-such-entity.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

// pagination parses limit/offset query parameters with their defaults.
func pagination(r *http.Request) (limit, offset int, err error) {
	limit, offset = resource.DefaultLimit, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	return limit, offset, nil
}

// readBody reads the request body, nil on failure.
func readBody(r *http.Request) []byte {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil
	}
	return body
}

// writeItemError maps a service error onto the item status codes.
func writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, msgNoItem)
	case errors.Is(err, model.ErrForbidden):
		jsonError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, model.ErrIncomplete):
		jsonError(w, http.StatusBadRequest, msgMissingFields)
	default:
		slog.Error("item request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, msgInternal)
	}
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := GetClaims(r.Context()).Subject
	item, err := h.Service.Create(r.Context(), owner, readBody(r), baseURL(r))
	if err != nil {
		writeItemError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, msgBadPagination)
		return
	}

	owner := GetClaims(r.Context()).Subject
	items, _, next, err := h.Service.List(r.Context(), owner, limit, offset, baseURL(r))
	if err != nil {
		writeItemError(w, err)
		return
	}

	output := map[string]any{"items": items}
	if next != "" {
		output["next"] = next
	}
	jsonResponse(w, http.StatusOK, output)
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoItem)
		return
	}

	owner := GetClaims(r.Context()).Subject
	item, err := h.Service.Get(r.Context(), owner, id, baseURL(r))
	if err != nil {
		writeItemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Patch handles PATCH /items/{id}.
func (h *ItemsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoItem)
		return
	}

	owner := GetClaims(r.Context()).Subject
	item, err := h.Service.Patch(r.Context(), owner, id, readBody(r), baseURL(r))
	if err != nil {
		writeItemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Replace handles PUT /items/{id}.
func (h *ItemsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoItem)
		return
	}

	owner := GetClaims(r.Context()).Subject
	item, err := h.Service.Replace(r.Context(), owner, id, readBody(r), baseURL(r))
	if err != nil {
		writeItemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /items/{id}. The service severs any order
// association in the same transaction.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusNotFound, msgNoItem)
		return
	}

	owner := GetClaims(r.Context()).Subject
	if err := h.Service.Delete(r.Context(), owner, id); err != nil {
		writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MethodNotAllowed rejects mutating verbs on a whole collection.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	jsonError(w, http.StatusMethodNotAllowed, msgCollectionVerbs)
}
