package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/libreria-austral/storefront-gateway/api/middleware"
	"github.com/libreria-austral/storefront-gateway/api/responses"
	"github.com/libreria-austral/storefront-gateway/api/validators"
	"github.com/libreria-austral/storefront-gateway/internal/cart"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

type cartView struct {
	Lines  []cart.Line `json:"lines"`
	Totals cart.Totals `json:"totals"`
}

// CartFetch returns the session's cart lines and derived totals.
func CartFetch(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		responses.WriteSuccess(w, cartView{
			Lines:  store.Lines(r.Context(), sessionID),
			Totals: store.Totals(r.Context(), sessionID),
		})
	}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Title     string `json:"title"`
	Price     any    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartAddItem adds or merges a line. Price arrives in whatever shape the
// catalog delivered it and is normalized inside the store.
func CartAddItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store.AddItem(r.Context(), sessionID, cart.ProductRef{
			ID:    body.ProductID,
			Title: body.Title,
			Price: body.Price,
		}, body.Quantity)

		responses.WriteSuccess(w, cartView{
			Lines:  store.Lines(r.Context(), sessionID),
			Totals: store.Totals(r.Context(), sessionID),
		})
	}
}

// CartRemoveItem drops a line regardless of its quantity.
func CartRemoveItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store.RemoveItem(r.Context(), sessionID, productID)

		responses.WriteSuccess(w, cartView{
			Lines:  store.Lines(r.Context(), sessionID),
			Totals: store.Totals(r.Context(), sessionID),
		})
	}
}

// CartClear empties the cart.
func CartClear(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store.Clear(r.Context(), sessionID)

		responses.WriteSuccess(w, cartView{
			Lines:  []cart.Line{},
			Totals: store.Totals(r.Context(), sessionID),
		})
	}
}
