package controllers

import (
	"net/http"

	"github.com/libreria-austral/storefront-gateway/api/middleware"
	"github.com/libreria-austral/storefront-gateway/api/responses"
	"github.com/libreria-austral/storefront-gateway/internal/orders"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

// Checkout submits the session's cart as an upstream order.
func Checkout(submitter *orders.Submitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if submitter == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := submitter.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
