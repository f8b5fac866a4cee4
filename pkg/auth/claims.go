package auth

import "github.com/golang-jwt/jwt/v5"

// SessionTokenClaims bind a gateway token to a browser session. The session id
// travels as the registered jti claim; identity fields are hints refreshed at
// login and are never trusted over the session provider's own record.
type SessionTokenClaims struct {
	UserID string `json:"uid,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionID returns the session identifier carried by the token.
func (c *SessionTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}

// SessionTokenPayload is the input for minting a session token.
type SessionTokenPayload struct {
	SessionID string
	UserID    string
	Name      string
	Role      string
}
