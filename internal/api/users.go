package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/narocila/internal/datastore"
	"github.com/erazemk/narocila/internal/users"
)

// UsersHandler serves the roster of subjects the API has seen.
type UsersHandler struct {
	Store datastore.Store
}

// List handles GET /users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := users.List(r.Context(), h.Store)
	if err != nil {
		slog.Error("listing users failed", "error", err)
		jsonError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}
