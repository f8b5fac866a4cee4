package controllers

import (
	"net/http"

	"github.com/libreria-austral/storefront-gateway/api/middleware"
	"github.com/libreria-austral/storefront-gateway/api/responses"
	"github.com/libreria-austral/storefront-gateway/api/validators"
	"github.com/libreria-austral/storefront-gateway/internal/auth"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		result, err := svc.Login(r.Context(), sessionID, auth.LoginInput{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthLogout signs the session out. Always succeeds.
func AuthLogout(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		svc.Logout(r.Context(), middleware.SessionIDFromContext(r.Context()))
		responses.WriteSuccess(w, map[string]string{"status": "signed out"})
	}
}

type registerRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Birthdate       string `json:"birthdate" validate:"required"`
	Country         string `json:"country" validate:"required"`
	Observations    string `json:"observations"`
	Role            string `json:"role" validate:"required"`
}

// AuthRegister forwards a new account to the upstream. Public: the browser
// registers before it can sign in.
func AuthRegister(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.Register(r.Context(), auth.RegisterInput{
			Name:            body.Name,
			Email:           body.Email,
			Password:        body.Password,
			ConfirmPassword: body.ConfirmPassword,
			Birthdate:       body.Birthdate,
			Country:         body.Country,
			Observations:    body.Observations,
			Role:            body.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "registered"})
	}
}
