package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response messages shared across handlers.
const (
	msgNotAcceptable   = "Please make sure the accept is json."
	msgMissingAuth     = "Missing auth credentials."
	msgUnauthorized    = "Unauthorized."
	msgForbidden       = "You are unauthorized to view this."
	msgMissingFields   = "The request object is missing at least one of the required attributes"
	msgCollectionVerbs = "These operations are not allowed on the entire list."
	msgNoItem          = "No item with this item_id exists"
	msgNoOrder         = "No order with this order_id exists"
	msgNoOrderOrItem   = "No order and/or item exists with this id."
	msgNoOrderPlain    = "No order exists with this id."
	msgDuplicateItem   = "This item is already on this order."
	msgItemNotOnOrder  = "The item is not on this order."
	msgBadPagination   = "The limit and offset parameters must be integers."
	msgInternal        = "Internal server error."
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes the error envelope.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"Error": message})
}
