package catalog

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

type stubClient struct {
	err      error
	list     listEnvelope
	detail   detailEnvelope
	gotPath  string
	gotToken string
}

func (c *stubClient) Do(_ context.Context, _ string, path, token string, _, out any) error {
	c.gotPath = path
	c.gotToken = token
	if c.err != nil {
		return c.err
	}
	switch ptr := out.(type) {
	case *listEnvelope:
		*ptr = c.list
	case *detailEnvelope:
		*ptr = c.detail
	}
	return nil
}

func newTestFetcher(t *testing.T, client apiClient) Fetcher {
	t.Helper()
	fetcher, err := NewFetcher(client, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return fetcher
}

func TestListNormalizesLooseRecords(t *testing.T) {
	t.Parallel()

	client := &stubClient{list: listEnvelope{Products: []payload{
		{AltID: "p1", Name: "Rayuela", Price: "2.300,50"},
		{ID: "p2", Title: "Ficciones", Price: 45.0},
		{ID: "p3", Price: "45,00"},
	}}}
	fetcher := newTestFetcher(t, client)

	products, err := fetcher.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if products[0].ID != "p1" || products[0].Title != "Rayuela" || products[0].Price != 2300.50 {
		t.Fatalf("unexpected first product: %+v", products[0])
	}
	if products[1].Price != 45 {
		t.Fatalf("expected numeric price preserved, got %v", products[1].Price)
	}
	if products[2].Title != FallbackTitle {
		t.Fatalf("expected fallback title, got %q", products[2].Title)
	}
	if client.gotToken != "" {
		t.Fatalf("catalog reads must be unauthenticated, got token %q", client.gotToken)
	}
}

func TestListSkipsRecordsWithoutID(t *testing.T) {
	t.Parallel()

	client := &stubClient{list: listEnvelope{Products: []payload{
		{Title: "orphan", Price: 1.0},
		{ID: "p1", Title: "kept", Price: 2.0},
	}}}
	fetcher := newTestFetcher(t, client)

	products, err := fetcher.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("expected only the identified record, got %+v", products)
	}
}

func TestListPropagatesUpstreamError(t *testing.T) {
	t.Parallel()

	client := &stubClient{err: errors.New("boom")}
	fetcher := newTestFetcher(t, client)

	if _, err := fetcher.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetValidatesID(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, &stubClient{})

	_, err := fetcher.Get(context.Background(), "  ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetNormalizesDetail(t *testing.T) {
	t.Parallel()

	client := &stubClient{detail: detailEnvelope{Product: payload{
		AltID: "p1", Title: "Rayuela", Price: "45,00", Descripcion: "clásico",
	}}}
	fetcher := newTestFetcher(t, client)

	product, err := fetcher.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.gotPath != "/products/p1" {
		t.Fatalf("unexpected path: %q", client.gotPath)
	}
	if product.Price != 45 || product.Description != "clásico" {
		t.Fatalf("unexpected product: %+v", product)
	}
}

func TestGetFallsBackToRequestedID(t *testing.T) {
	t.Parallel()

	client := &stubClient{detail: detailEnvelope{Product: payload{Title: "sin id"}}}
	fetcher := newTestFetcher(t, client)

	product, err := fetcher.Get(context.Background(), "p9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.ID != "p9" {
		t.Fatalf("expected requested id to backfill, got %q", product.ID)
	}
}
