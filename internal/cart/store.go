// Package cart holds the authoritative shopping-cart state for every active
// gateway session, mirrored write-through to durable storage so a session
// survives gateway restarts the way a browser cart survives page reloads.
package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/libreria-austral/storefront-gateway/pkg/logger"
	"github.com/libreria-austral/storefront-gateway/pkg/money"
)

// FallbackTitle is used when a product descriptor carries no usable title.
const FallbackTitle = "Producto sin título"

// Line is one product-and-quantity entry in a cart.
type Line struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Totals are derived from the current lines on every read, never cached.
type Totals struct {
	TotalItems  int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
}

// ProductRef is the minimal descriptor required to add a product. Price may be
// a number or a locale-formatted string; a malformed price normalizes to 0.
type ProductRef struct {
	ID    string
	Title string
	Price any
}

// Mirror is the durable storage behind the in-memory state. Failures are
// tolerated: the store degrades to empty defaults instead of surfacing them.
type Mirror interface {
	SaveCart(ctx context.Context, sessionID string, lines []Line) error
	LoadCart(ctx context.Context, sessionID string) ([]Line, bool, error)
	DeleteCart(ctx context.Context, sessionID string) error
}

// Store keeps one ordered, unique-by-product cart per session.
type Store struct {
	mu       sync.Mutex
	carts    map[string][]Line
	hydrated map[string]struct{}
	mirror   Mirror
	logg     *logger.Logger
}

// NewStore builds a cart store over the provided mirror.
func NewStore(mirror Mirror, logg *logger.Logger) (*Store, error) {
	if mirror == nil {
		return nil, fmt.Errorf("cart mirror required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{
		carts:    map[string][]Line{},
		hydrated: map[string]struct{}{},
		mirror:   mirror,
		logg:     logg,
	}, nil
}

// AddItem merges the product into the session's cart: an existing line gains
// quantityDelta, a new product appends a line preserving insertion order.
func (s *Store) AddItem(ctx context.Context, sessionID string, product ProductRef, quantityDelta int) {
	if quantityDelta < 1 {
		quantityDelta = 1
	}
	title := strings.TrimSpace(product.Title)
	if title == "" {
		title = FallbackTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx, sessionID)

	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == product.ID {
			lines[i].Quantity += quantityDelta
			s.persist(ctx, sessionID)
			return
		}
	}

	s.carts[sessionID] = append(lines, Line{
		ProductID: product.ID,
		Title:     title,
		UnitPrice: money.FromAny(product.Price),
		Quantity:  quantityDelta,
	})
	s.persist(ctx, sessionID)
}

// RemoveItem drops the line with the given product id; absent ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx, sessionID)

	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.carts[sessionID] = append(lines[:i:i], lines[i+1:]...)
			s.persist(ctx, sessionID)
			return
		}
	}
}

// Clear empties the cart and purges its durable mirror.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = nil
	s.hydrated[sessionID] = struct{}{}
	if err := s.mirror.DeleteCart(ctx, sessionID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart mirror delete failed")
	}
}

// Lines returns a copy of the current cart in insertion order.
func (s *Store) Lines(ctx context.Context, sessionID string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx, sessionID)
	return copyLines(s.carts[sessionID])
}

// Totals recomputes the item count and amount from the current lines.
func (s *Store) Totals(ctx context.Context, sessionID string) Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx, sessionID)

	totals := Totals{}
	subtotals := make([]float64, 0, len(s.carts[sessionID]))
	for _, line := range s.carts[sessionID] {
		totals.TotalItems += line.Quantity
		subtotals = append(subtotals, money.Subtotal(line.UnitPrice, line.Quantity))
	}
	totals.TotalAmount = money.Sum(subtotals...)
	return totals
}

// Snapshot returns an immutable copy of the cart taken at this moment, used by
// the order submitter so edits made while a submission is in flight are never
// clobbered by its outcome.
func (s *Store) Snapshot(ctx context.Context, sessionID string) []Line {
	return s.Lines(ctx, sessionID)
}

// CommitSnapshot subtracts a successfully submitted snapshot from the current
// cart. Quantities added after the snapshot was taken survive; lines fully
// covered by the snapshot are removed.
func (s *Store) CommitSnapshot(ctx context.Context, sessionID string, snapshot []Line) {
	if len(snapshot) == 0 {
		return
	}
	submitted := make(map[string]int, len(snapshot))
	for _, line := range snapshot {
		submitted[line.ProductID] += line.Quantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx, sessionID)

	remaining := make([]Line, 0, len(s.carts[sessionID]))
	for _, line := range s.carts[sessionID] {
		line.Quantity -= submitted[line.ProductID]
		if line.Quantity > 0 {
			remaining = append(remaining, line)
		}
	}
	if len(remaining) == 0 {
		remaining = nil
	}
	s.carts[sessionID] = remaining
	s.persist(ctx, sessionID)
}

// hydrate loads the durable mirror the first time a session is touched. The
// stored cart is taken verbatim, stale prices included; a storage failure
// degrades to an empty cart.
func (s *Store) hydrate(ctx context.Context, sessionID string) {
	if _, done := s.hydrated[sessionID]; done {
		return
	}
	s.hydrated[sessionID] = struct{}{}

	lines, found, err := s.mirror.LoadCart(ctx, sessionID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart mirror read failed, starting empty")
		return
	}
	if found {
		s.carts[sessionID] = lines
	}
}

func (s *Store) persist(ctx context.Context, sessionID string) {
	if err := s.mirror.SaveCart(ctx, sessionID, s.carts[sessionID]); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart mirror write failed")
	}
}

func copyLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
