package user

import (
	"context"

	"pcparts-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, p domain.ListParams) ([]domain.User, int, error)
	Update(ctx context.Context, u domain.User) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}
