package session

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

type stubMirror struct {
	identity   *Identity
	credential string
	found      bool
	loadErr    error
	saveErr    error
	deletes    int
}

func (m *stubMirror) SaveSession(_ context.Context, _ string, identity Identity, credential string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	ident := identity
	m.identity = &ident
	m.credential = credential
	m.found = true
	return nil
}

func (m *stubMirror) LoadSession(context.Context, string) (*Identity, string, bool, error) {
	if m.loadErr != nil {
		return nil, "", false, m.loadErr
	}
	return m.identity, m.credential, m.found, nil
}

func (m *stubMirror) DeleteSession(context.Context, string) error {
	m.deletes++
	m.identity = nil
	m.credential = ""
	m.found = false
	return nil
}

type stubCarts struct {
	cleared []string
}

func (c *stubCarts) Clear(_ context.Context, sessionID string) {
	c.cleared = append(c.cleared, sessionID)
}

func newTestProvider(t *testing.T, mirror Mirror, carts cartClearer) *Provider {
	t.Helper()
	provider, err := NewProvider(mirror, carts, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return provider
}

func TestLoginStoresPair(t *testing.T) {
	t.Parallel()

	mirror := &stubMirror{}
	provider := newTestProvider(t, mirror, &stubCarts{})
	ctx := context.Background()

	identity := Identity{ID: "u1", Name: "Ana", Role: "client"}
	if err := provider.Login(ctx, "s1", identity, "bearer-token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess := provider.Current(ctx, "s1")
	if !sess.Authenticated() {
		t.Fatal("expected authenticated session")
	}
	if sess.Identity.ID != "u1" || sess.Credential != "bearer-token" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if mirror.identity == nil || mirror.credential != "bearer-token" {
		t.Fatal("expected pair persisted to mirror")
	}
}

func TestLoginRejectsIncompletePair(t *testing.T) {
	t.Parallel()

	provider := newTestProvider(t, &stubMirror{}, &stubCarts{})
	ctx := context.Background()

	err := provider.Login(ctx, "s1", Identity{}, "token")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing identity, got %v", err)
	}

	err = provider.Login(ctx, "s1", Identity{ID: "u1"}, "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing credential, got %v", err)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	t.Parallel()

	mirror := &stubMirror{}
	carts := &stubCarts{}
	provider := newTestProvider(t, mirror, carts)
	ctx := context.Background()

	if err := provider.Login(ctx, "s1", Identity{ID: "u1", Name: "Ana"}, "token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	provider.Logout(ctx, "s1")

	if sess := provider.Current(ctx, "s1"); sess.Authenticated() {
		t.Fatalf("expected anonymous session after logout, got %+v", sess)
	}
	if mirror.deletes != 1 {
		t.Fatalf("expected mirror purge, got %d deletes", mirror.deletes)
	}
	if len(carts.cleared) != 1 || carts.cleared[0] != "s1" {
		t.Fatalf("expected cart cleared for s1, got %v", carts.cleared)
	}
}

func TestCurrentRestoresFromMirror(t *testing.T) {
	t.Parallel()

	mirror := &stubMirror{
		identity:   &Identity{ID: "u1", Name: "Ana", Role: "admin"},
		credential: "token",
		found:      true,
	}
	provider := newTestProvider(t, mirror, &stubCarts{})

	sess := provider.Current(context.Background(), "s1")
	if !sess.Authenticated() {
		t.Fatal("expected restored session")
	}
	if sess.Identity.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", sess.Identity)
	}
}

func TestHalfWrittenPairIsAnonymous(t *testing.T) {
	t.Parallel()

	mirror := &stubMirror{
		identity: &Identity{ID: "u1"},
		found:    true,
	}
	provider := newTestProvider(t, mirror, &stubCarts{})

	if sess := provider.Current(context.Background(), "s1"); sess.Authenticated() {
		t.Fatalf("expected half-written pair to read as anonymous, got %+v", sess)
	}
}

func TestMirrorFailureStaysAnonymous(t *testing.T) {
	t.Parallel()

	mirror := &stubMirror{loadErr: errors.New("redis down")}
	provider := newTestProvider(t, mirror, &stubCarts{})

	if sess := provider.Current(context.Background(), "s1"); sess.Authenticated() {
		t.Fatal("expected anonymous session on storage failure")
	}
}

func TestCurrentRole(t *testing.T) {
	t.Parallel()

	provider := newTestProvider(t, &stubMirror{}, &stubCarts{})
	ctx := context.Background()

	if role := provider.CurrentRole(ctx, "s1"); role != "" {
		t.Fatalf("expected empty role for anonymous session, got %q", role)
	}

	if err := provider.Login(ctx, "s1", Identity{ID: "u1", Role: "admin"}, "token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role := provider.CurrentRole(ctx, "s1"); role != "admin" {
		t.Fatalf("expected admin role, got %q", role)
	}
}
