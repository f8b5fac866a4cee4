// Package auth proxies credential checks to the upstream API. The gateway
// never stores or hashes a password; it forwards the login and keeps the
// returned identity/token pair in the session provider.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/libreria-austral/storefront-gateway/internal/session"
	pkgauth "github.com/libreria-austral/storefront-gateway/pkg/auth"
	"github.com/libreria-austral/storefront-gateway/pkg/config"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// The storefront requires exactly four alphanumeric characters.
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9]{4}$`)
	namePattern     = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s]+$`)
)

var allowedRoles = map[string]struct{}{
	"client":   {},
	"employee": {},
	"admin":    {},
}

type apiClient interface {
	Do(ctx context.Context, method, path, token string, in, out any) error
}

type sessionWriter interface {
	Login(ctx context.Context, sessionID string, identity session.Identity, credential string) error
	Logout(ctx context.Context, sessionID string)
}

// Service handles login, logout, and registration.
type Service struct {
	client   apiClient
	sessions sessionWriter
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
}

// NewService builds the auth service.
func NewService(client apiClient, sessions sessionWriter, jwtCfg config.JWTConfig, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{client: client, sessions: sessions, jwtCfg: jwtCfg, logg: logg}, nil
}

// LoginInput carries the credentials the browser posted.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult reports the signed-in identity and a refreshed gateway token
// carrying it, the explicit session-changed signal dependent views consume.
type LoginResult struct {
	Identity     session.Identity `json:"user"`
	SessionToken string           `json:"sessionToken"`
}

// userPayload mirrors the upstream's loose user shape.
type userPayload struct {
	ID    string `json:"id"`
	AltID string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userPayload) identity() session.Identity {
	id := strings.TrimSpace(u.AltID)
	if id == "" {
		id = strings.TrimSpace(u.ID)
	}
	return session.Identity{
		ID:    id,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

type loginEnvelope struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

// Login verifies the credentials upstream and, on success, stores the
// identity/credential pair and mints a session token reflecting the identity.
func (s *Service) Login(ctx context.Context, sessionID string, input LoginInput) (*LoginResult, error) {
	if !emailPattern.MatchString(input.Email) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	var envelope loginEnvelope
	err := s.client.Do(ctx, http.MethodPost, "/login", "", map[string]string{
		"email":    input.Email,
		"password": input.Password,
	}, &envelope)
	if err != nil {
		return nil, err
	}

	identity := envelope.User.identity()
	if identity.ID == "" || envelope.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream login response incomplete")
	}

	if err := s.sessions.Login(ctx, sessionID, identity, envelope.Token); err != nil {
		return nil, err
	}

	token, err := pkgauth.MintSessionToken(s.jwtCfg, time.Now().UTC(), pkgauth.SessionTokenPayload{
		SessionID: sessionID,
		UserID:    identity.ID,
		Name:      identity.Name,
		Role:      identity.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}

	return &LoginResult{Identity: identity, SessionToken: token}, nil
}

// Logout clears the session pair and the cart together.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	s.sessions.Logout(ctx, sessionID)
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Birthdate       string
	Country         string
	Observations    string
	Role            string
}

// Register validates the form the way the storefront does and forwards the
// new user to the upstream.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > 50 || !namePattern.MatchString(name) {
		return pkgerrors.New(pkgerrors.CodeValidation, "name must be letters and spaces, at most 50 characters")
	}
	if !emailPattern.MatchString(input.Email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if !passwordPattern.MatchString(input.Password) {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be exactly 4 alphanumeric characters")
	}
	if input.Password != input.ConfirmPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}
	if strings.TrimSpace(input.Birthdate) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "birthdate is required")
	}
	if strings.TrimSpace(input.Country) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "country is required")
	}
	if _, ok := allowedRoles[input.Role]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "role must be client, employee, or admin")
	}

	return s.client.Do(ctx, http.MethodPost, "/users", "", map[string]string{
		"name":         name,
		"email":        input.Email,
		"password":     input.Password,
		"birthdate":    input.Birthdate,
		"country":      input.Country,
		"observations": input.Observations,
		"role":         input.Role,
	}, nil)
}
