// Package backoffice implements the admin surface: product management and the
// registered-users table. All writes go upstream carrying the administrator's
// bearer credential.
package backoffice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/libreria-austral/storefront-gateway/internal/session"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
	"github.com/libreria-austral/storefront-gateway/pkg/money"
)

const ingresoLayout = "2006-01-02"

var allowedCategories = map[string]struct{}{
	"Novela":    {},
	"Historia":  {},
	"Filosofía": {},
	"Infantil":  {},
	"Otros":     {},
}

var allowedStatuses = map[string]struct{}{
	"Disponible": {},
	"Sin Stock":  {},
}

type apiClient interface {
	Do(ctx context.Context, method, path, token string, in, out any) error
}

type sessionSource interface {
	Current(ctx context.Context, sessionID string) session.Session
}

// Service proxies admin operations to the upstream API.
type Service struct {
	client   apiClient
	sessions sessionSource
	logg     *logger.Logger
}

// NewService builds the back-office service.
func NewService(client apiClient, sessions sessionSource, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{client: client, sessions: sessions, logg: logg}, nil
}

// ProductInput is the admin form: every field is required, the price arrives
// locale-formatted, and the entry date arrives as YYYY-MM-DD.
type ProductInput struct {
	Title       string
	Price       string
	Image       string
	Description string
	Ingreso     string
	Category    string
	Rating      float64
	Reviews     int
	Status      string
}

// productPayload is the upstream's product write shape.
type productPayload struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Descripcion string  `json:"descripcion"`
	Ingreso     int64   `json:"ingreso"`
	Categoria   string  `json:"categoria"`
	Rating      float64 `json:"rating"`
	Reviews     int     `json:"reviews"`
	Status      string  `json:"status"`
}

func (in ProductInput) toPayload() (*productPayload, error) {
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Price) == "" ||
		strings.TrimSpace(in.Image) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Ingreso) == "" ||
		strings.TrimSpace(in.Category) == "" ||
		strings.TrimSpace(in.Status) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "all product fields are required")
	}

	price, err := normalizePrice(in.Price)
	if err != nil {
		return nil, err
	}

	ingreso, err := IngresoToUnix(in.Ingreso)
	if err != nil {
		return nil, err
	}

	if _, ok := allowedCategories[in.Category]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
	}
	if _, ok := allowedStatuses[in.Status]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be Disponible or Sin Stock")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	if in.Reviews < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviews must not be negative")
	}

	return &productPayload{
		Title:       strings.TrimSpace(in.Title),
		Price:       price,
		Image:       in.Image,
		Descripcion: in.Description,
		Ingreso:     ingreso,
		Categoria:   in.Category,
		Rating:      in.Rating,
		Reviews:     in.Reviews,
		Status:      in.Status,
	}, nil
}

// normalizePrice applies the storefront price rule but, unlike the cart path,
// rejects input with no digits at all instead of degrading to zero.
func normalizePrice(raw string) (float64, error) {
	if !strings.ContainsAny(raw, "0123456789") {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price is not a valid amount")
	}
	return money.Normalize(raw), nil
}

// IngresoToUnix converts the form's YYYY-MM-DD entry date to unix seconds.
func IngresoToUnix(date string) (int64, error) {
	parsed, err := time.Parse(ingresoLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "ingreso must be a valid date")
	}
	return parsed.Unix(), nil
}

// IngresoFromUnix converts a stored unix timestamp back to the form's
// YYYY-MM-DD value, used to prefill the edit form.
func IngresoFromUnix(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(ingresoLayout)
}

// CreateProduct posts a new product upstream with the admin's credential.
func (s *Service) CreateProduct(ctx context.Context, sessionID string, input ProductInput) error {
	credential, err := s.credential(ctx, sessionID)
	if err != nil {
		return err
	}
	payload, err := input.toPayload()
	if err != nil {
		return err
	}
	return s.client.Do(ctx, http.MethodPost, "/products", credential, payload, nil)
}

// UpdateProduct replaces an existing product upstream.
func (s *Service) UpdateProduct(ctx context.Context, sessionID, productID string, input ProductInput) error {
	credential, err := s.credential(ctx, sessionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	payload, err := input.toPayload()
	if err != nil {
		return err
	}
	return s.client.Do(ctx, http.MethodPut, "/products/"+url.PathEscape(productID), credential, payload, nil)
}

// DeleteProduct removes a product upstream.
func (s *Service) DeleteProduct(ctx context.Context, sessionID, productID string) error {
	credential, err := s.credential(ctx, sessionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.client.Do(ctx, http.MethodDelete, "/products/"+url.PathEscape(productID), credential, nil, nil)
}

func (s *Service) credential(ctx context.Context, sessionID string) (string, error) {
	sess := s.sessions.Current(ctx, sessionID)
	if !sess.Authenticated() {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	return sess.Credential, nil
}
