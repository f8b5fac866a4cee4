package controllers

import (
	"net/http"
	"time"

	"github.com/libreria-austral/storefront-gateway/api/middleware"
	"github.com/libreria-austral/storefront-gateway/api/responses"
	"github.com/libreria-austral/storefront-gateway/internal/cart"
	"github.com/libreria-austral/storefront-gateway/internal/session"
	pkgauth "github.com/libreria-austral/storefront-gateway/pkg/auth"
	"github.com/libreria-austral/storefront-gateway/pkg/config"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

// SessionCreate mints an anonymous session token for a fresh browser. The
// storefront calls it once before anything else.
func SessionCreate(jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := pkgauth.NewSessionID()
		token, err := pkgauth.MintSessionToken(jwtCfg, time.Now(), pkgauth.SessionTokenPayload{
			SessionID: sessionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not mint session token"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"sessionId":    sessionID,
			"sessionToken": token,
		})
	}
}

// SessionShow reports the current identity and cart totals for the session
// behind the bearer token.
func SessionShow(sessions *session.Provider, carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		sess := sessions.Current(r.Context(), sessionID)
		totals := carts.Totals(r.Context(), sessionID)

		payload := map[string]any{
			"authenticated": sess.Authenticated(),
			"cart":          totals,
		}
		if sess.Authenticated() {
			payload["user"] = sess.Identity
		}

		responses.WriteSuccess(w, payload)
	}
}
