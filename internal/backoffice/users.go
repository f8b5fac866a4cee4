package backoffice

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
)

// User is the normalized registered-user row the admin table shows.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type adminUserPayload struct {
	ID    string `json:"id"`
	AltID string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u adminUserPayload) normalize() User {
	id := strings.TrimSpace(u.AltID)
	if id == "" {
		id = strings.TrimSpace(u.ID)
	}
	role := u.Role
	if role == "" {
		role = "client"
	}
	return User{ID: id, Name: u.Name, Email: u.Email, Role: role}
}

type usersEnvelope struct {
	Users []adminUserPayload `json:"users"`
}

type userEnvelope struct {
	User adminUserPayload `json:"user"`
}

// UserUpdate carries the editable fields of a registered user.
type UserUpdate struct {
	Name  string
	Email string
	Role  string
}

// ListUsers returns every registered user.
func (s *Service) ListUsers(ctx context.Context, sessionID string) ([]User, error) {
	credential, err := s.credential(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var envelope usersEnvelope
	if err := s.client.Do(ctx, http.MethodGet, "/users", credential, nil, &envelope); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(envelope.Users))
	for _, raw := range envelope.Users {
		users = append(users, raw.normalize())
	}
	return users, nil
}

// UpdateUser edits a user's name, email, or role upstream.
func (s *Service) UpdateUser(ctx context.Context, sessionID, userID string, update UserUpdate) (*User, error) {
	credential, err := s.credential(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(update.Name) == "" || strings.TrimSpace(update.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}
	if _, ok := allowedRoles[update.Role]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be client, employee, or admin")
	}

	var envelope userEnvelope
	err = s.client.Do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID), credential, map[string]string{
		"name":  update.Name,
		"email": update.Email,
		"role":  update.Role,
	}, &envelope)
	if err != nil {
		return nil, err
	}

	user := envelope.User.normalize()
	if user.ID == "" {
		user.ID = userID
	}
	return &user, nil
}

// DeleteUser removes a registered user upstream.
func (s *Service) DeleteUser(ctx context.Context, sessionID, userID string) error {
	credential, err := s.credential(ctx, sessionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.client.Do(ctx, http.MethodDelete, "/users/"+url.PathEscape(userID), credential, nil, nil)
}

var allowedRoles = map[string]struct{}{
	"client":   {},
	"employee": {},
	"admin":    {},
}
