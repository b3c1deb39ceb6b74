package cart

import (
	"context"

	"pcparts-backend/internal/domain"
)

// LineRef identifies a cart line by its (product, variant SKU) pair.
type LineRef struct {
	ProductID  string
	VariantSKU string
}

type Repository interface {
	Create(ctx context.Context, c domain.Cart) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	List(ctx context.Context, p domain.ListParams) ([]domain.Cart, int, error)
	ReplaceItems(ctx context.Context, cartID string, items []domain.CartItem) error
	RemoveItems(ctx context.Context, cartID string, refs []LineRef) error
	Delete(ctx context.Context, id string) error
}
