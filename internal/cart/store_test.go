package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

type stubMirror struct {
	saved    map[string][]Line
	loadErr  error
	saveErr  error
	stored   []Line
	hasStore bool
	deletes  int
}

func newStubMirror() *stubMirror {
	return &stubMirror{saved: map[string][]Line{}}
}

func (m *stubMirror) SaveCart(_ context.Context, sessionID string, lines []Line) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[sessionID] = copyLines(lines)
	return nil
}

func (m *stubMirror) LoadCart(context.Context, string) ([]Line, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	return m.stored, m.hasStore, nil
}

func (m *stubMirror) DeleteCart(context.Context, string) error {
	m.deletes++
	return nil
}

func newTestStore(t *testing.T, mirror Mirror) *Store {
	t.Helper()
	store, err := NewStore(mirror, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store
}

func TestAddItemMergesByProduct(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "Rayuela", Price: "2.300,50"}, 1)
	store.AddItem(ctx, "s1", ProductRef{ID: "p2", Title: "Ficciones", Price: 10.0}, 2)
	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "Rayuela", Price: "2.300,50"}, 3)

	lines := store.Lines(ctx, "s1")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ProductID != "p1" || lines[0].Quantity != 4 {
		t.Fatalf("expected p1 first with quantity 4, got %+v", lines[0])
	}
	if lines[0].UnitPrice != 2300.50 {
		t.Fatalf("expected normalized price 2300.50, got %v", lines[0].UnitPrice)
	}
	if lines[1].ProductID != "p2" || lines[1].Quantity != 2 {
		t.Fatalf("expected p2 second with quantity 2, got %+v", lines[1])
	}
}

func TestAddItemDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "   ", Price: "abc"}, 0)

	lines := store.Lines(ctx, "s1")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Title != FallbackTitle {
		t.Fatalf("expected fallback title, got %q", lines[0].Title)
	}
	if lines[0].UnitPrice != 0 {
		t.Fatalf("expected malformed price to normalize to 0, got %v", lines[0].UnitPrice)
	}
	if lines[0].Quantity != 1 {
		t.Fatalf("expected quantity floor of 1, got %d", lines[0].Quantity)
	}
}

func TestRemoveItemDropsWholeLine(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 5.0}, 3)
	store.AddItem(ctx, "s1", ProductRef{ID: "p2", Title: "B", Price: 7.0}, 1)

	store.RemoveItem(ctx, "s1", "p1")
	store.RemoveItem(ctx, "s1", "missing")

	lines := store.Lines(ctx, "s1")
	if len(lines) != 1 || lines[0].ProductID != "p2" {
		t.Fatalf("expected only p2 to remain, got %+v", lines)
	}
}

func TestTotalsRecomputed(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 0.1}, 3)
	store.AddItem(ctx, "s1", ProductRef{ID: "p2", Title: "B", Price: 10.0}, 2)

	totals := store.Totals(ctx, "s1")
	if totals.TotalItems != 5 {
		t.Fatalf("expected 5 items, got %d", totals.TotalItems)
	}
	if math.Abs(totals.TotalAmount-20.3) > 1e-9 {
		t.Fatalf("expected total 20.3, got %v", totals.TotalAmount)
	}
}

func TestClearPurgesMirror(t *testing.T) {
	t.Parallel()

	mirror := newStubMirror()
	store := newTestStore(t, mirror)
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 5.0}, 1)
	store.Clear(ctx, "s1")

	if lines := store.Lines(ctx, "s1"); len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
	if mirror.deletes != 1 {
		t.Fatalf("expected 1 mirror delete, got %d", mirror.deletes)
	}
}

func TestCommitSnapshotKeepsLaterAdds(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 10.0}, 2)
	snapshot := store.Snapshot(ctx, "s1")

	// Edits made while the submission is in flight.
	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 10.0}, 1)
	store.AddItem(ctx, "s1", ProductRef{ID: "p2", Title: "B", Price: 4.0}, 1)

	store.CommitSnapshot(ctx, "s1", snapshot)

	lines := store.Lines(ctx, "s1")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after commit, got %+v", lines)
	}
	if lines[0].ProductID != "p1" || lines[0].Quantity != 1 {
		t.Fatalf("expected 1 unsubmitted p1 to survive, got %+v", lines[0])
	}
	if lines[1].ProductID != "p2" || lines[1].Quantity != 1 {
		t.Fatalf("expected p2 to survive untouched, got %+v", lines[1])
	}
}

func TestCommitSnapshotClearsFullyCoveredCart(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 10.0}, 2)
	snapshot := store.Snapshot(ctx, "s1")
	store.CommitSnapshot(ctx, "s1", snapshot)

	if lines := store.Lines(ctx, "s1"); len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
}

func TestHydrateFromMirror(t *testing.T) {
	t.Parallel()

	mirror := newStubMirror()
	mirror.stored = []Line{{ProductID: "p1", Title: "A", UnitPrice: 9.5, Quantity: 2}}
	mirror.hasStore = true
	store := newTestStore(t, mirror)

	lines := store.Lines(context.Background(), "s1")
	if len(lines) != 1 || lines[0].ProductID != "p1" || lines[0].Quantity != 2 {
		t.Fatalf("expected restored cart, got %+v", lines)
	}
}

func TestMirrorFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	mirror := newStubMirror()
	mirror.loadErr = errors.New("redis down")
	mirror.saveErr = errors.New("redis down")
	store := newTestStore(t, mirror)
	ctx := context.Background()

	if lines := store.Lines(ctx, "s1"); len(lines) != 0 {
		t.Fatalf("expected empty cart on storage failure, got %+v", lines)
	}

	// The in-memory cart keeps working when the mirror is unavailable.
	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 5.0}, 1)
	if lines := store.Lines(ctx, "s1"); len(lines) != 1 {
		t.Fatalf("expected in-memory add to succeed, got %+v", lines)
	}
}

func TestSessionsIsolated(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	store.AddItem(ctx, "s1", ProductRef{ID: "p1", Title: "A", Price: 5.0}, 1)
	store.AddItem(ctx, "s2", ProductRef{ID: "p2", Title: "B", Price: 6.0}, 1)

	if lines := store.Lines(ctx, "s1"); len(lines) != 1 || lines[0].ProductID != "p1" {
		t.Fatalf("s1 cart leaked: %+v", lines)
	}
	if lines := store.Lines(ctx, "s2"); len(lines) != 1 || lines[0].ProductID != "p2" {
		t.Fatalf("s2 cart leaked: %+v", lines)
	}
}
