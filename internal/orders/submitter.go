// Package orders turns the current cart into a remote order. Submission works
// against a snapshot of the cart taken at the moment of the call: the cart
// stays unlocked while the request is in flight, and only the snapshot's
// quantities are cleared on success, so items added meanwhile are never
// silently dropped.
package orders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/libreria-austral/storefront-gateway/internal/cart"
	"github.com/libreria-austral/storefront-gateway/internal/session"
	"github.com/libreria-austral/storefront-gateway/internal/upstream"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
	"github.com/libreria-austral/storefront-gateway/pkg/money"
)

// OrderLine is one submitted product with its extended price.
type OrderLine struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderRequest is the outbound order payload. It is constructed fresh from the
// snapshot and the session at submission time and never mutated afterwards.
type OrderRequest struct {
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	Products []OrderLine `json:"products"`
	Total    float64     `json:"total"`
}

// Receipt reports a successful submission back to the caller.
type Receipt struct {
	Total     float64     `json:"total"`
	Items     int         `json:"items"`
	Confirmed bool        `json:"confirmed"`
	Orders    interface{} `json:"orders,omitempty"`
}

type cartStore interface {
	Snapshot(ctx context.Context, sessionID string) []cart.Line
	CommitSnapshot(ctx context.Context, sessionID string, snapshot []cart.Line)
}

type sessionSource interface {
	Current(ctx context.Context, sessionID string) session.Session
}

type apiClient interface {
	Do(ctx context.Context, method, path, token string, in, out any) error
}

// Submitter translates carts into upstream orders.
type Submitter struct {
	carts    cartStore
	sessions sessionSource
	client   apiClient
	logg     *logger.Logger
}

// NewSubmitter builds the order submitter.
func NewSubmitter(carts cartStore, sessions sessionSource, client apiClient, logg *logger.Logger) (*Submitter, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session provider required")
	}
	if client == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Submitter{carts: carts, sessions: sessions, client: client, logg: logg}, nil
}

// Submit sends the current cart upstream as an order. Without a complete
// identity/credential pair it fails before any network call. On failure the
// cart is left untouched so the user can retry manually.
func (s *Submitter) Submit(ctx context.Context, sessionID string) (*Receipt, error) {
	sess := s.sessions.Current(ctx, sessionID)
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in before placing an order")
	}

	snapshot := s.carts.Snapshot(ctx, sessionID)
	if len(snapshot) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	request := buildRequest(*sess.Identity, snapshot)

	if err := s.client.Do(ctx, http.MethodPost, "/orders", sess.Credential, request, nil); err != nil {
		message := upstream.Message(err)
		if message == "" {
			message = "order could not be submitted"
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeSubmission, err, message)
	}

	s.carts.CommitSnapshot(ctx, sessionID, snapshot)

	receipt := &Receipt{
		Total: request.Total,
		Items: len(request.Products),
	}

	// Post-submission read used only to confirm state; its failure never
	// undoes a submitted order.
	var orders any
	if err := s.client.Do(ctx, http.MethodGet, "/orders", sess.Credential, nil, &orders); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order confirmation fetch failed")
	} else {
		receipt.Confirmed = true
		receipt.Orders = orders
	}

	return receipt, nil
}

// History lists the authenticated user's orders from the upstream.
func (s *Submitter) History(ctx context.Context, sessionID string) (any, error) {
	sess := s.sessions.Current(ctx, sessionID)
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view orders")
	}
	var orders any
	if err := s.client.Do(ctx, http.MethodGet, "/orders", sess.Credential, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func buildRequest(identity session.Identity, snapshot []cart.Line) OrderRequest {
	lines := make([]OrderLine, 0, len(snapshot))
	subtotals := make([]float64, 0, len(snapshot))
	for _, item := range snapshot {
		subtotal := money.Subtotal(item.UnitPrice, item.Quantity)
		lines = append(lines, OrderLine{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
		})
		subtotals = append(subtotals, subtotal)
	}
	return OrderRequest{
		UserID:   identity.ID,
		UserName: identity.Name,
		Products: lines,
		Total:    money.Sum(subtotals...),
	}
}
