package api

import (
	"context"
	"net/http"

	"github.com/erazemk/narocila/internal/auth"
	"github.com/erazemk/narocila/internal/datastore"
	"github.com/erazemk/narocila/internal/model"
	"github.com/erazemk/narocila/internal/relation"
	"github.com/erazemk/narocila/internal/resource"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(store datastore.Store, verifier auth.Verifier) http.Handler {
	rel := relation.New(store)

	itemService := resource.NewService(store, resource.Items)
	itemService.OnDelete(func(ctx context.Context, tx datastore.Store, id int64, item *model.Item) error {
		return rel.CascadeItemDelete(ctx, tx, id, item)
	})

	orderService := resource.NewService(store, resource.Orders)
	orderService.OnDelete(func(ctx context.Context, tx datastore.Store, id int64, order *model.Order) error {
		return rel.CascadeOrderDelete(ctx, tx, id, order)
	})

	itemsHandler := &ItemsHandler{Service: itemService}
	ordersHandler := &OrdersHandler{Service: orderService, Relation: rel}
	usersHandler := &UsersHandler{Store: store}

	authMW := Auth(verifier, store)
	protect := func(h http.HandlerFunc) http.Handler {
		return AcceptJSON(authMW(h))
	}

	mux := http.NewServeMux()

	// Items.
	mux.Handle("POST /items", protect(itemsHandler.Create))
	mux.Handle("GET /items", protect(itemsHandler.List))
	mux.HandleFunc("PUT /items", MethodNotAllowed)
	mux.HandleFunc("DELETE /items", MethodNotAllowed)
	mux.Handle("GET /items/{id}", protect(itemsHandler.Get))
	mux.Handle("PATCH /items/{id}", protect(itemsHandler.Patch))
	mux.Handle("PUT /items/{id}", protect(itemsHandler.Replace))
	mux.Handle("DELETE /items/{id}", protect(itemsHandler.Delete))

	// Orders.
	mux.Handle("POST /orders", protect(ordersHandler.Create))
	mux.Handle("GET /orders", protect(ordersHandler.List))
	mux.HandleFunc("PUT /orders", MethodNotAllowed)
	mux.HandleFunc("DELETE /orders", MethodNotAllowed)
	mux.Handle("GET /orders/{id}", protect(ordersHandler.Get))
	mux.Handle("PATCH /orders/{id}", protect(ordersHandler.Patch))
	mux.Handle("PUT /orders/{id}", protect(ordersHandler.Replace))
	mux.Handle("DELETE /orders/{id}", protect(ordersHandler.Delete))

	// Association.
	mux.Handle("PUT /orders/{oid}/items/{iid}", protect(ordersHandler.Associate))
	mux.Handle("DELETE /orders/{oid}/items/{iid}", protect(ordersHandler.Disassociate))
	mux.Handle("GET /orders/{id}/items", protect(ordersHandler.ListItems))

	// User roster.
	mux.HandleFunc("GET /users", usersHandler.List)

	return mux
}
