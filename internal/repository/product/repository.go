package product

import (
	"context"

	"pcparts-backend/internal/domain"
)

// ListFilter narrows a product listing beyond the shared pagination params.
type ListFilter struct {
	domain.ListParams
	CategoryID string
	ActiveOnly bool
}

// SearchFilter selects candidate products for the recommendation assistant.
// Brand/category/keyword values are matched as case-insensitive alternations
// against the joined names; attribute filtering happens in the service.
type SearchFilter struct {
	ProductTypes  []string
	Brands        []string
	Categories    []string
	Keywords      []string
	MinPriceCents *int64
	MaxPriceCents *int64
	Limit         int
}

// CatalogEntry is a product joined with its brand/category names and the
// cheapest in-stock variant price, used by the recommendation snapshot.
type CatalogEntry struct {
	domain.Product
	BrandName     string `json:"brandName"`
	CategoryName  string `json:"categoryName"`
	MinPriceCents int64  `json:"minPriceCents"`
}

type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, f ListFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) error
	Search(ctx context.Context, f SearchFilter) ([]CatalogEntry, error)
}
