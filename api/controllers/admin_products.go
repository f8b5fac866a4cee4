package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/libreria-austral/storefront-gateway/api/middleware"
	"github.com/libreria-austral/storefront-gateway/api/responses"
	"github.com/libreria-austral/storefront-gateway/api/validators"
	"github.com/libreria-austral/storefront-gateway/internal/backoffice"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

type adminProductRequest struct {
	Title       string  `json:"title" validate:"required"`
	Price       string  `json:"price" validate:"required"`
	Image       string  `json:"image" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Ingreso     string  `json:"ingreso" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Reviews     int     `json:"reviews" validate:"gte=0"`
	Status      string  `json:"status" validate:"required"`
}

func (b adminProductRequest) input() backoffice.ProductInput {
	return backoffice.ProductInput{
		Title:       b.Title,
		Price:       b.Price,
		Image:       b.Image,
		Description: b.Description,
		Ingreso:     b.Ingreso,
		Category:    b.Category,
		Rating:      b.Rating,
		Reviews:     b.Reviews,
		Status:      b.Status,
	}
}

// AdminCreateProduct adds a catalog record through the back office.
func AdminCreateProduct(svc *backoffice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "back office unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adminProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.CreateProduct(r.Context(), sessionID, body.input()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "created"})
	}
}

// AdminUpdateProduct edits a catalog record through the back office.
func AdminUpdateProduct(svc *backoffice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "back office unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adminProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		productID := chi.URLParam(r, "productId")
		if err := svc.UpdateProduct(r.Context(), sessionID, productID, body.input()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// AdminDeleteProduct removes a catalog record through the back office.
func AdminDeleteProduct(svc *backoffice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "back office unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		productID := chi.URLParam(r, "productId")
		if err := svc.DeleteProduct(r.Context(), sessionID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
