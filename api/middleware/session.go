package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/libreria-austral/storefront-gateway/api/responses"
	pkgauth "github.com/libreria-austral/storefront-gateway/pkg/auth"
	"github.com/libreria-austral/storefront-gateway/pkg/config"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

// identitySource is the session provider surface the middleware needs; the
// provider, not the token claims, is the source of truth for roles.
type identitySource interface {
	CurrentRole(ctx context.Context, sessionID string) string
}

// SessionAuth validates the gateway session token and seeds the request
// context with the session id and identity hints.
func SessionAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token"))
				return
			}

			claims, err := pkgauth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token"))
				return
			}
			if claims.SessionID() == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxSessionID, claims.SessionID())
			if claims.UserID != "" {
				ctx = context.WithValue(ctx, ctxUserID, claims.UserID)
			}
			if claims.Role != "" {
				ctx = context.WithValue(ctx, ctxRole, claims.Role)
			}

			if logg != nil {
				fields := map[string]any{"session_id": claims.SessionID()}
				if claims.UserID != "" {
					fields["user_id"] = claims.UserID
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the back-office routes on the live session's role.
func RequireAdmin(sessions identitySource, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := SessionIDFromContext(r.Context())
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
				return
			}
			if sessions.CurrentRole(r.Context(), sessionID) != "admin" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
