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

// AdminListUsers serves the registered-user table.
func AdminListUsers(svc *backoffice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "back office unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		users, err := svc.ListUsers(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"users": users})
	}
}

type adminUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// AdminUpdateUser edits a registered user's name, email, or role.
func AdminUpdateUser(svc *backoffice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "back office unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adminUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		user, err := svc.UpdateUser(r.Context(), sessionID, chi.URLParam(r, "userId"), backoffice.UserUpdate{
			Name:  body.Name,
			Email: body.Email,
			Role:  body.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"user": user})
	}
}

// AdminDeleteUser removes a registered user.
func AdminDeleteUser(svc *backoffice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "back office unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.DeleteUser(r.Context(), sessionID, chi.URLParam(r, "userId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
