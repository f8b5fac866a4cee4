package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

// Fetcher exposes the catalog reads the storefront needs.
type Fetcher interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
}

type apiClient interface {
	Do(ctx context.Context, method, path, token string, in, out any) error
}

type fetcher struct {
	client apiClient
	logg   *logger.Logger
}

// NewFetcher builds the catalog boundary over the upstream client.
func NewFetcher(client apiClient, logg *logger.Logger) (Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &fetcher{client: client, logg: logg}, nil
}

type listEnvelope struct {
	Products []payload `json:"products"`
}

type detailEnvelope struct {
	Product payload `json:"product"`
}

func (f *fetcher) List(ctx context.Context) ([]Product, error) {
	var envelope listEnvelope
	if err := f.client.Do(ctx, http.MethodGet, "/products", "", nil, &envelope); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(envelope.Products))
	for _, raw := range envelope.Products {
		product := raw.normalize()
		if product.ID == "" {
			f.logg.Warn(ctx, "catalog record without id skipped")
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

func (f *fetcher) Get(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var envelope detailEnvelope
	if err := f.client.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &envelope); err != nil {
		return nil, err
	}

	product := envelope.Product.normalize()
	if product.ID == "" {
		product.ID = id
	}
	return &product, nil
}
