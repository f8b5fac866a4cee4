package catalog

import (
	"strings"

	"github.com/libreria-austral/storefront-gateway/pkg/money"
)

// FallbackTitle is displayed when the upstream record carries no usable title.
const FallbackTitle = "Producto sin título"

// Product is the strict catalog schema the rest of the gateway works with.
// Normalization happens once, here at the API boundary; downstream code may
// assume ID is set, Title is non-empty, and Price is canonical.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Status      string  `json:"status,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Reviews     int     `json:"reviews,omitempty"`
	IngresoUnix int64   `json:"ingreso,omitempty"`
}

// payload mirrors the loose shapes the upstream serves: Mongo-style "_id" or
// plain "id", "title" or "name", and a price that may be a number or a
// locale-formatted string.
type payload struct {
	ID          string  `json:"id"`
	AltID       string  `json:"_id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	Price       any     `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Descripcion string  `json:"descripcion"`
	Categoria   string  `json:"categoria"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Rating      float64 `json:"rating"`
	Reviews     int     `json:"reviews"`
	Ingreso     int64   `json:"ingreso"`
}

func (p payload) normalize() Product {
	id := strings.TrimSpace(p.AltID)
	if id == "" {
		id = strings.TrimSpace(p.ID)
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = strings.TrimSpace(p.Name)
	}
	if title == "" {
		title = FallbackTitle
	}

	description := p.Descripcion
	if description == "" {
		description = p.Description
	}
	category := p.Categoria
	if category == "" {
		category = p.Category
	}

	return Product{
		ID:          id,
		Title:       title,
		Price:       money.FromAny(p.Price),
		Image:       p.Image,
		Description: description,
		Category:    category,
		Status:      p.Status,
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		IngresoUnix: p.Ingreso,
	}
}
