package category

import (
	"context"

	"pcparts-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context, p domain.ListParams) ([]domain.Category, int, error)
	ListWithProductCounts(ctx context.Context, p domain.ListParams) ([]domain.CategoryWithCount, int, error)
	Update(ctx context.Context, c domain.Category) (*domain.Category, error)
	SetActive(ctx context.Context, id string, active bool) error
}
