package brand

import (
	"context"

	"pcparts-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, b domain.Brand) (*domain.Brand, error)
	GetByID(ctx context.Context, id string) (*domain.Brand, error)
	List(ctx context.Context, p domain.ListParams) ([]domain.Brand, int, error)
	Update(ctx context.Context, b domain.Brand) (*domain.Brand, error)
	SetActive(ctx context.Context, id string, active bool) error
}
