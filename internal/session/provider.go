// Package session tracks the signed-in identity and upstream bearer credential
// for every gateway session, with a durable mirror so a prior session is
// restored after a gateway restart. Identity and credential always move
// together: they are set by login and cleared by logout as a pair.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

// Identity is the signed-in user record as the upstream reported it.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Session pairs an identity with the upstream bearer credential. Both are set
// or both are absent, never one without the other.
type Session struct {
	Identity   *Identity
	Credential string
}

// Authenticated reports whether the session holds a complete identity/credential pair.
func (s Session) Authenticated() bool {
	return s.Identity != nil && s.Credential != ""
}

// Mirror is the durable storage for the identity/credential pair.
type Mirror interface {
	SaveSession(ctx context.Context, sessionID string, identity Identity, credential string) error
	LoadSession(ctx context.Context, sessionID string) (*Identity, string, bool, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type cartClearer interface {
	Clear(ctx context.Context, sessionID string)
}

// Provider owns the session state for every active gateway session.
type Provider struct {
	mu       sync.Mutex
	sessions map[string]Session
	restored map[string]struct{}
	mirror   Mirror
	carts    cartClearer
	logg     *logger.Logger
}

// NewProvider builds a session provider over the durable mirror. The cart
// store is wired in because signing out always empties the cart.
func NewProvider(mirror Mirror, carts cartClearer, logg *logger.Logger) (*Provider, error) {
	if mirror == nil {
		return nil, fmt.Errorf("session mirror required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Provider{
		sessions: map[string]Session{},
		restored: map[string]struct{}{},
		mirror:   mirror,
		carts:    carts,
		logg:     logg,
	}, nil
}

// Login sets the identity and credential together and persists both.
func (p *Provider) Login(ctx context.Context, sessionID string, identity Identity, credential string) error {
	if strings.TrimSpace(identity.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "identity id is required")
	}
	if strings.TrimSpace(credential) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "credential is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ident := identity
	p.sessions[sessionID] = Session{Identity: &ident, Credential: credential}
	p.restored[sessionID] = struct{}{}

	if err := p.mirror.SaveSession(ctx, sessionID, identity, credential); err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "session mirror write failed")
	}
	return nil
}

// Logout clears the identity/credential pair, purges the durable mirror, and
// empties the cart. Sign-out discarding an unsubmitted cart matches the
// storefront's observed behavior.
func (p *Provider) Logout(ctx context.Context, sessionID string) {
	p.mu.Lock()
	p.sessions[sessionID] = Session{}
	p.restored[sessionID] = struct{}{}
	if err := p.mirror.DeleteSession(ctx, sessionID); err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "session mirror delete failed")
	}
	p.mu.Unlock()

	p.carts.Clear(ctx, sessionID)
}

// Current returns the session, restoring it from the durable mirror on first
// touch. Absent or unreadable storage leaves the session anonymous.
func (p *Provider) Current(ctx context.Context, sessionID string) Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.restore(ctx, sessionID)
	return p.sessions[sessionID]
}

// CurrentRole returns the signed-in user's role, or "" for anonymous sessions.
func (p *Provider) CurrentRole(ctx context.Context, sessionID string) string {
	sess := p.Current(ctx, sessionID)
	if !sess.Authenticated() {
		return ""
	}
	return sess.Identity.Role
}

func (p *Provider) restore(ctx context.Context, sessionID string) {
	if _, done := p.restored[sessionID]; done {
		return
	}
	p.restored[sessionID] = struct{}{}

	identity, credential, found, err := p.mirror.LoadSession(ctx, sessionID)
	if err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "session mirror read failed, staying anonymous")
		return
	}
	if !found {
		return
	}
	// A half-written pair is treated as no session at all.
	if identity == nil || credential == "" {
		return
	}
	p.sessions[sessionID] = Session{Identity: identity, Credential: credential}
}
